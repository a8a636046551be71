package cart

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryEmptyCart(t *testing.T) {
	s, _ := newTestStore(t)
	assert.Equal(t, "Panier vide", s.Summary())
}

func TestSummaryLayout(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	s.AddItem(ctx, Candidate{ID: "k1", Name: "Couteau Chef", Price: 250, Type: TypeKnife})
	s.AddItem(ctx, Candidate{ID: "k1", Name: "Couteau Chef", Price: 250, Type: TypeKnife})
	s.AddItem(ctx, Candidate{
		ID:    "configured-1",
		Name:  "Couteau sur mesure - Chef",
		Price: 430,
		Type:  TypeConfigured,
		Customizations: Customizations{
			{Label: "Modèle", Value: "Chef"},
			{Label: "Gravure lame", Value: "ABC"},
		},
	})

	want := "Récapitulatif du panier (3 articles)\n" +
		"\n" +
		"1. Couteau Chef\n" +
		"   Prix unitaire : 250.00 €\n" +
		"   Quantité : 2\n" +
		"   Sous-total : 500.00 €\n" +
		"\n" +
		"2. Couteau sur mesure - Chef\n" +
		"   Prix unitaire : 430.00 €\n" +
		"   Quantité : 1\n" +
		"   Sous-total : 430.00 €\n" +
		"   Personnalisations :\n" +
		"   - Modèle : Chef\n" +
		"   - Gravure lame : ABC\n" +
		"\n" +
		"TOTAL : 930.00 €"

	assert.Equal(t, want, s.Summary())
}

func TestSummarySingularArticle(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	s.AddItem(ctx, Candidate{ID: "k1", Name: "Office", Price: "89,90 €"})

	assert.Contains(t, s.Summary(), "Récapitulatif du panier (1 article)\n")
	assert.Contains(t, s.Summary(), "TOTAL : 89.90 €")
}

func TestCustomizationsKeepOrderInJSON(t *testing.T) {
	item := Item{
		ID:       "c1",
		Quantity: 1,
		Type:     TypeConfigured,
		Customizations: Customizations{
			{Label: "Modèle", Value: "Chef"},
			{Label: "Bois", Value: "Noyer"},
			{Label: "Autres détails", Value: "Aucun"},
		},
	}

	data, err := json.Marshal(item)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"customizations":{"Modèle":"Chef","Bois":"Noyer","Autres détails":"Aucun"}`)

	var decoded Item
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, item.Customizations, decoded.Customizations)

	plain, err := json.Marshal(Item{ID: "k1", Quantity: 1, Type: TypeKnife})
	require.NoError(t, err)
	assert.NotContains(t, string(plain), "customizations")
}
