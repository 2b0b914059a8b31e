package models

// RelationKind selects one of the user membership relations.
type RelationKind int

const (
	RelationFavorite RelationKind = iota + 1
	RelationCart
	RelationSubscription
)

func (k RelationKind) String() string {
	switch k {
	case RelationFavorite:
		return "favorite"
	case RelationCart:
		return "shopping_cart"
	case RelationSubscription:
		return "subscription"
	default:
		return "unknown"
	}
}
