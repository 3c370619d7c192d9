package showroom

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/zeusync/showroom/internal/core/cart"
	"github.com/zeusync/showroom/internal/core/events"
	"github.com/zeusync/showroom/internal/core/hittest"
	"github.com/zeusync/showroom/internal/core/input"
	"github.com/zeusync/showroom/internal/core/navigation"
	"github.com/zeusync/showroom/internal/core/observability/log"
)

// HandleKey forwards a key transition to the desktop source. It reports
// whether the key is a movement key.
func (s *Showroom) HandleKey(code string, down bool) (bool, error) {
	if !s.alive.Load() {
		return false, ErrClosed
	}
	d, ok := s.source.(*input.Desktop)
	if !ok {
		return false, ErrWrongDevice
	}
	return d.HandleKey(code, down), nil
}

func (s *Showroom) touch() (*input.Touch, error) {
	if !s.alive.Load() {
		return nil, ErrClosed
	}
	t, ok := s.source.(*input.Touch)
	if !ok {
		return nil, ErrWrongDevice
	}
	return t, nil
}

// MoveStick sets the movement joystick vector.
func (s *Showroom) MoveStick(x, y float64) error {
	t, err := s.touch()
	if err != nil {
		return err
	}
	t.SetMoveVector(x, y)
	return nil
}

func (s *Showroom) ReleaseMoveStick() error {
	t, err := s.touch()
	if err != nil {
		return err
	}
	t.ReleaseMove()
	return nil
}

// RotateStick sets the rotation joystick and returns the quantized sector.
func (s *Showroom) RotateStick(x, y float64) (input.Rotation, error) {
	t, err := s.touch()
	if err != nil {
		return input.RotateNone, err
	}
	return t.SetRotateVector(x, y), nil
}

func (s *Showroom) ReleaseRotateStick() error {
	t, err := s.touch()
	if err != nil {
		return err
	}
	t.ReleaseRotate()
	return nil
}

// Engage requests pointer capture in locked mode.
func (s *Showroom) Engage() error {
	if !s.alive.Load() {
		return ErrClosed
	}
	return s.session.Engage()
}

// CaptureDenied reports a capture refusal from the client.
func (s *Showroom) CaptureDenied(err error) {
	if s.alive.Load() {
		s.session.CaptureDenied(err)
	}
}

// CaptureLost reports that the client lost capture.
func (s *Showroom) CaptureLost() {
	if s.alive.Load() {
		s.session.CaptureLost()
	}
}

// Unlock is the explicit exit gesture.
func (s *Showroom) Unlock() bool {
	if !s.alive.Load() {
		return false
	}
	return s.session.Disengage(navigation.ReasonUser)
}

// Look applies the heading read back from the client's pointer capture.
func (s *Showroom) Look(yaw, pitch float64) error {
	if !s.alive.Load() {
		return ErrClosed
	}
	return s.session.SyncOrientation(yaw, pitch)
}

func (s *Showroom) Orbit(dAzimuth, dElevation float64) error {
	if !s.alive.Load() {
		return ErrClosed
	}
	return s.session.Orbit(dAzimuth, dElevation)
}

func (s *Showroom) Zoom(delta float64) error {
	if !s.alive.Load() {
		return ErrClosed
	}
	return s.session.Zoom(delta)
}

func (s *Showroom) Pan(dx, dz float64) error {
	if !s.alive.Load() {
		return ErrClosed
	}
	return s.session.Pan(dx, dz)
}

// Click resolves a click or tap at pointer (NDC). In locked mode the ray
// goes through the screen center, and a click while disengaged is the
// engagement gesture instead of a pick. A hit releases capture and publishes
// entity.activated.
func (s *Showroom) Click(pointer mgl64.Vec2) (hittest.Hit, bool) {
	if !s.alive.Load() {
		return hittest.Hit{}, false
	}
	if !s.session.Engaged() {
		if err := s.session.Engage(); err != nil {
			s.logger.Debug("Engage on click failed", log.Error(err))
		}
		return hittest.Hit{}, false
	}

	ndc := s.session.PickPoint(pointerNDC(pointer))
	cam := s.session.Pose().Camera(s.cfg.Lens)
	hit, ok := s.resolver.Resolve(cam, ndc)
	if !ok {
		return hittest.Hit{}, false
	}

	s.session.Disengage(navigation.ReasonEntityActivated)
	s.logger.Debug("Entity activated",
		log.String("product", hit.Entity.Product.ID),
		log.Float64("distance", hit.Distance),
	)
	s.publish(events.EntityActivated, events.Activation{
		ProductID: hit.Entity.Product.ID,
		Name:      hit.Entity.Product.Name,
		Distance:  hit.Distance,
	})
	return hit, true
}

// AddToCart increments productID. Unknown ids are accepted and count zero
// toward the total.
func (s *Showroom) AddToCart(productID string) error {
	if !s.alive.Load() {
		return ErrClosed
	}
	s.cart.Add(productID)
	return nil
}

// RemoveFromCart deletes the whole line for productID.
func (s *Showroom) RemoveFromCart(productID string) error {
	if !s.alive.Load() {
		return ErrClosed
	}
	s.cart.Remove(productID)
	return nil
}

func (s *Showroom) ClearCart() error {
	if !s.alive.Load() {
		return ErrClosed
	}
	s.cart.Clear()
	return nil
}

// Cart returns the cart joined with the catalog.
func (s *Showroom) Cart() cart.Summary {
	return cart.Summarize(s.cart, s.catalog)
}

// Checkout is a stub: it assigns an order id to the current cart, publishes
// checkout.requested and empties the cart. No order is sent anywhere.
func (s *Showroom) Checkout() (events.Checkout, error) {
	if !s.alive.Load() {
		return events.Checkout{}, ErrClosed
	}
	if s.cart.Len() == 0 {
		return events.Checkout{}, ErrEmptyCart
	}
	order := events.Checkout{OrderID: uuid.NewString(), Summary: s.Cart()}
	s.logger.Info("Checkout",
		log.String("order", order.OrderID),
		log.Int("items", order.Summary.TotalCount),
		log.String("total", cart.FormatPrice(order.Summary.TotalPrice)),
	)
	s.publish(events.CheckoutRequested, order)
	s.cart.Clear()
	return order, nil
}
