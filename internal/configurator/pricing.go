package configurator

import "knife-atelier/internal/config"

type PricingConfig struct {
	BasePrice       float64
	BladeEngraving  float64
	HandleEngraving float64
	OtherDetails    float64
}

func DefaultPricing() PricingConfig {
	return PricingConfig{
		BasePrice:       350,
		BladeEngraving:  50,
		HandleEngraving: 30,
		OtherDetails:    20,
	}
}

func NewPricingConfig(cfg config.PricingConfig) PricingConfig {
	return PricingConfig{
		BasePrice:       cfg.Base,
		BladeEngraving:  cfg.BladeEngraving,
		HandleEngraving: cfg.HandleEngraving,
		OtherDetails:    cfg.OtherDetails,
	}
}

// CalculatePrice returns the price breakdown of a configured knife.
// Surcharges apply when the matching text is non-empty; final_price is their sum.
func CalculatePrice(sel Selection, cfg PricingConfig) (priceDetails map[string]float64) {
	priceDetails = make(map[string]float64)

	priceDetails["base_price"] = cfg.BasePrice
	if sel.BladeEngraving != "" {
		priceDetails["blade_engraving"] = cfg.BladeEngraving
	}
	if sel.HandleEngraving != "" {
		priceDetails["handle_engraving"] = cfg.HandleEngraving
	}
	if sel.OtherDetails != "" {
		priceDetails["other_details"] = cfg.OtherDetails
	}

	priceDetails["final_price"] = priceDetails["base_price"] +
		priceDetails["blade_engraving"] +
		priceDetails["handle_engraving"] +
		priceDetails["other_details"]

	return priceDetails
}
