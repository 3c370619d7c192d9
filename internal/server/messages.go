package server

import (
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/showroom/internal/core/catalog"
	"github.com/zeusync/showroom/internal/core/events"
	"github.com/zeusync/showroom/internal/core/events/bus"
	"github.com/zeusync/showroom/internal/core/navigation"
	"github.com/zeusync/showroom/internal/core/scene"
)

// Inbound message types.
const (
	MsgKey           = "key"
	MsgMove          = "move"
	MsgRotate        = "rotate"
	MsgLook          = "look"
	MsgOrbit         = "orbit"
	MsgPan           = "pan"
	MsgZoom          = "zoom"
	MsgEngage        = "engage"
	MsgCaptureDenied = "capture_denied"
	MsgCaptureLost   = "capture_lost"
	MsgUnlock        = "unlock"
	MsgClick         = "click"
	MsgCartAdd       = "cart_add"
	MsgCartRemove    = "cart_remove"
	MsgCartClear     = "cart_clear"
	MsgCheckout      = "checkout"
)

// Outbound message types.
const (
	OutHello       = "hello"
	OutPose        = "pose"
	OutCart        = "cart"
	OutActivated   = "activated"
	OutLocked      = "locked"
	OutUnlocked    = "unlocked"
	OutAssetLoaded = "asset_loaded"
	OutAssetFailed = "asset_failed"
	OutError       = "error"
	OutCheckout    = "checkout"
)

// Inbound is a client message. Which fields are read depends on Type:
// key uses Code and Down; move and rotate use X, Y and Release; look uses
// Yaw and Pitch; orbit uses X and Y as azimuth and elevation deltas; pan
// uses X and Y as world x and z; zoom uses Delta; click uses X and Y as NDC,
// or as pixels from the top-left when Width and Height give the viewport
// size; cart_add and cart_remove use Product; capture_denied uses Reason.
type Inbound struct {
	Type    string  `json:"type"`
	Code    string  `json:"code,omitempty"`
	Down    bool    `json:"down,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	Release bool    `json:"release,omitempty"`
	Yaw     float64 `json:"yaw,omitempty"`
	Pitch   float64 `json:"pitch,omitempty"`
	Delta   float64 `json:"delta,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	Product string  `json:"product,omitempty"`
	Reason  string  `json:"reason,omitempty"`
}

// Outbound is a server message.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type Hello struct {
	Session  string            `json:"session"`
	Device   string            `json:"device"`
	Mode     string            `json:"mode"`
	Products []catalog.Product `json:"products"`
}

type PoseUpdate struct {
	navigation.Pose
	Engaged bool `json:"engaged"`
}

type AssetFailure struct {
	ProductID string `json:"productId"`
	URL       string `json:"url"`
	Error     string `json:"error"`
}

type ErrorReply struct {
	Request string `json:"request,omitempty"`
	Message string `json:"message"`
}

func decodeInbound(data []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return Inbound{}, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	if in.Type == "" {
		return Inbound{}, fmt.Errorf("%w: missing type", ErrInvalidMessage)
	}
	return in, nil
}

// clickPoint returns the click position in NDC.
func clickPoint(in Inbound) mgl64.Vec2 {
	if in.Width > 0 && in.Height > 0 {
		return scene.ScreenToNDC(in.X, in.Y, in.Width, in.Height)
	}
	return mgl64.Vec2{in.X, in.Y}
}

func errorReply(request string, err error) Outbound {
	return Outbound{Type: OutError, Data: ErrorReply{Request: request, Message: err.Error()}}
}

// outboundFor maps a showroom event to the message the client sees. Events
// with no client representation report false.
func outboundFor(e bus.Event) (Outbound, bool) {
	switch e.Type() {
	case events.CartChanged:
		if c, ok := e.Data().(events.CartChange); ok {
			return Outbound{Type: OutCart, Data: c.Summary}, true
		}
	case events.EntityActivated:
		return Outbound{Type: OutActivated, Data: e.Data()}, true
	case events.NavigationLocked:
		return Outbound{Type: OutLocked, Data: e.Data()}, true
	case events.NavigationUnlocked:
		return Outbound{Type: OutUnlocked, Data: e.Data()}, true
	case events.AssetLoaded:
		return Outbound{Type: OutAssetLoaded, Data: e.Data()}, true
	case events.AssetFailed:
		if r, ok := e.Data().(events.AssetResult); ok {
			f := AssetFailure{ProductID: r.ProductID, URL: r.URL}
			if r.Err != nil {
				f.Error = r.Err.Error()
			}
			return Outbound{Type: OutAssetFailed, Data: f}, true
		}
	case events.CheckoutRequested:
		return Outbound{Type: OutCheckout, Data: e.Data()}, true
	}
	return Outbound{}, false
}
