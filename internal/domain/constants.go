package domain

// Listing pagination
const (
	InitialVisibleCount = 12
	LoadMoreStep        = 6
)

// Rating bounds
const (
	MinRating = 0
	MaxRating = 5
)

// Order summary rules
const (
	FreeDeliveryThreshold = 100.0
	DeliveryFee           = 10.0
)

// Registration rules
const (
	MinEmailLength    = 3
	MinPasswordLength = 6
	// bcrypt reads at most 72 bytes.
	MaxPasswordLength = 72
)

// Like toggle messages shown to the user
var LikeMessages = map[LikeKind]string{
	LikeAdded:   "Product added to favorites",
	LikeRemoved: "Product removed from favorites",
}
