package core

// Predefined tags offered to users; free-form tags are accepted as well.
const (
	TagYearly        = "Yearly"
	TagMonthly       = "Monthly"
	TagFood          = "Food"
	TagDrinks        = "Drinks"
	TagClothes       = "Clothes"
	TagGadgets       = "Gadgets"
	TagMiscellaneous = "Miscellaneous"
	TagFuel          = "Fuel"
	TagRent          = "Rent"
	TagEMI           = "EMI"
	TagParty         = "Party"

	// TagDebt marks transactions created by clearing a debt.
	TagDebt = "Debt"
)

func DefaultTags() []string {
	return []string{
		TagYearly, TagMonthly, TagFood, TagDrinks, TagClothes, TagGadgets,
		TagMiscellaneous, TagFuel, TagRent, TagEMI, TagParty,
	}
}
