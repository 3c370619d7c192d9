// Package events names the showroom events and their payloads.
package events

import (
	"github.com/zeusync/showroom/internal/core/cart"
)

const (
	CartChanged        = "cart.changed"
	EntityActivated    = "entity.activated"
	NavigationLocked   = "navigation.locked"
	NavigationUnlocked = "navigation.unlocked"
	AssetLoaded        = "asset.loaded"
	AssetFailed        = "asset.failed"
	CheckoutRequested  = "checkout.requested"
)

// CartChange carries the cart state after a mutation.
type CartChange struct {
	Summary cart.Summary `json:"summary"`
}

// Activation is published when a click resolves to a product.
type Activation struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Distance  float64 `json:"distance"`
}

// NavigationChange accompanies the locked and unlocked events.
type NavigationChange struct {
	Reason string `json:"reason"`
}

// AssetResult reports one finished model load.
type AssetResult struct {
	ProductID string `json:"productId"`
	URL       string `json:"url"`
	Nodes     int    `json:"nodes"`
	Err       error  `json:"-"`
}

// Checkout is the stub order produced from the cart.
type Checkout struct {
	OrderID string       `json:"orderId"`
	Summary cart.Summary `json:"summary"`
}
