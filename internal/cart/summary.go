package cart

import (
	"fmt"
	"strings"
)

const EmptySummary = "Panier vide"

// Summary renders the quote-request text of the snapshot, line for line:
//
//	Récapitulatif du panier (3 articles)
//
//	1. Couteau Chef
//	   Prix unitaire : 250.00 €
//	   Quantité : 2
//	   Sous-total : 500.00 €
//
//	TOTAL : 500.00 €
//
// Configured lines add a "Personnalisations :" block after their sub-total.
func (s Snapshot) Summary() string {
	if len(s.Items) == 0 {
		return EmptySummary
	}

	lines := []string{
		fmt.Sprintf("Récapitulatif du panier (%s)", articles(s.TotalItems)),
		"",
	}

	for i, item := range s.Items {
		lines = append(lines,
			fmt.Sprintf("%d. %s", i+1, item.Name),
			"   Prix unitaire : "+formatEuros(item.Price),
			fmt.Sprintf("   Quantité : %d", item.Quantity),
			"   Sous-total : "+formatEuros(item.Subtotal()),
		)

		if item.Type == TypeConfigured && len(item.Customizations) > 0 {
			lines = append(lines, "   Personnalisations :")
			for _, c := range item.Customizations {
				lines = append(lines, fmt.Sprintf("   - %s : %s", c.Label, c.Value))
			}
		}
		lines = append(lines, "")
	}

	lines = append(lines, "TOTAL : "+formatEuros(s.TotalPrice))
	return strings.Join(lines, "\n")
}

func formatEuros(amount float64) string {
	return fmt.Sprintf("%.2f €", amount)
}

func articles(n int) string {
	if n == 1 {
		return "1 article"
	}
	return fmt.Sprintf("%d articles", n)
}
