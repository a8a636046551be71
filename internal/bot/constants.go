package bot

const (
	callbackModel     = "model"
	callbackWood      = "wood"
	callbackEngraving = "engraving"
	callbackNav       = "nav"
	callbackCart      = "cart"

	navNext = "next"
	navPrev = "prev"

	cartInc = "inc"
	cartDec = "dec"
	cartDel = "del"

	// emptyInput lets the visitor skip an optional personalization field.
	emptyInput = "-"

	sessionPrefix = "telegram:"
)

const helpText = `Commandes disponibles :
/configure - Configurer un couteau sur mesure
/cart - Voir le panier
/clear - Vider le panier
/export - Recevoir le panier au format Excel
/help - Afficher cette aide

Pendant la configuration, envoyez un texte pour filtrer la liste affichée.`

const startText = `Bienvenue à l'atelier ! 🔪

Configurez votre couteau sur mesure en cinq étapes avec /configure,
ou consultez votre panier avec /cart.`
