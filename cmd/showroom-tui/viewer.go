package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/showroom/internal/core/assets"
	"github.com/zeusync/showroom/internal/core/boundary"
	"github.com/zeusync/showroom/internal/core/cart"
	"github.com/zeusync/showroom/internal/core/catalog"
	"github.com/zeusync/showroom/internal/core/events"
	"github.com/zeusync/showroom/internal/core/events/bus"
	"github.com/zeusync/showroom/internal/core/input"
	"github.com/zeusync/showroom/internal/core/navigation"
	"github.com/zeusync/showroom/internal/core/showroom"
)

const (
	statusLines = 3
	cartWidth   = 32
)

var turnStep = mgl64.DegToRad(5)

// Terminals report key presses but never releases, so a movement key holds
// its direction for exactly one tick.
var runeKeys = map[rune]string{
	'w': "KeyW", 'a': "KeyA", 's': "KeyS", 'd': "KeyD",
}

var arrowKeys = map[tcell.Key]string{
	tcell.KeyUp:    "ArrowUp",
	tcell.KeyDown:  "ArrowDown",
	tcell.KeyLeft:  "ArrowLeft",
	tcell.KeyRight: "ArrowRight",
}

// Heading arrows by screen octant, starting at +x and turning toward +z
// (down the screen).
var headingArrows = [8]rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}

type mark struct {
	pos  mgl64.Vec3
	char rune
	id   string
}

type viewer struct {
	screen tcell.Screen
	room   *showroom.Showroom
	bounds boundary.Boundary
	marks  []mark

	latched  []string
	selected string
	summary  cart.Summary
	status   string
	showCart bool
}

func newViewer(screen tcell.Screen, cfg showroom.Config, cat *catalog.Catalog) (*viewer, error) {
	cfg.Navigation.DesktopMode = navigation.ModeLocked
	v := &viewer{
		screen: screen,
		room:   showroom.New(cfg, input.DeviceDesktop, cat),
		bounds: cfg.Boundary,
		status: "loading products",
	}
	products := cat.Products()
	for i, p := range assets.Layout(products, cfg.Boundary, cfg.FloorY) {
		name := []rune(products[i].Name)
		char := '?'
		if len(name) > 0 {
			char = name[0]
		}
		v.marks = append(v.marks, mark{pos: p.Position, char: char, id: p.ProductID})
	}
	if _, err := v.room.Bus().Subscribe(bus.Wildcard, v.onEvent); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *viewer) run(ctx context.Context, tick time.Duration) error {
	defer v.room.Close()
	if err := v.room.Start(ctx); err != nil {
		return err
	}
	if err := v.room.Engage(); err != nil {
		return err
	}

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-eventChan:
			if !v.handleEvent(ev) {
				return nil
			}
		case <-v.room.Pending():
			v.room.Tick(0)
		case now := <-ticker.C:
			v.step(now.Sub(last).Seconds())
			last = now
			v.draw()
		}
	}
}

// step advances one tick and drops the one-tick key latches.
func (v *viewer) step(dt float64) {
	v.room.Tick(dt)
	for _, code := range v.latched {
		_, _ = v.room.HandleKey(code, false)
	}
	v.latched = v.latched[:0]
}

func (v *viewer) latch(code string) {
	if _, err := v.room.HandleKey(code, true); err == nil {
		v.latched = append(v.latched, code)
	}
}

// handleEvent reports false when the viewer should quit.
func (v *viewer) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if code, ok := arrowKeys[ev.Key()]; ok {
			v.latch(code)
			return true
		}
		if ev.Key() == tcell.KeyEnter {
			v.checkout()
			return true
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch r := ev.Rune(); r {
		case 'q':
			v.turn(turnStep)
		case 'e':
			v.turn(-turnStep)
		case ' ':
			v.room.Click(mgl64.Vec2{})
		case 'c':
			v.showCart = !v.showCart
		case 'x':
			_ = v.room.ClearCart()
		case 'b':
			if v.selected != "" {
				_ = v.room.AddToCart(v.selected)
			}
		default:
			if code, ok := runeKeys[r]; ok {
				v.latch(code)
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func (v *viewer) turn(delta float64) {
	p := v.room.Pose()
	if err := v.room.Look(p.Yaw+delta, p.Pitch); err != nil {
		v.status = err.Error()
	}
}

func (v *viewer) checkout() {
	if _, err := v.room.Checkout(); err != nil {
		v.status = err.Error()
	}
}

func (v *viewer) onEvent(e bus.Event) error {
	switch data := e.Data().(type) {
	case events.Activation:
		v.selected = data.ProductID
		price, _ := v.room.Catalog().Price(data.ProductID)
		v.status = fmt.Sprintf("%s %s  [b] add to cart  [space] resume", data.Name, cart.FormatPrice(price))
	case events.CartChange:
		v.summary = data.Summary
	case events.NavigationChange:
		if e.Type() == events.NavigationUnlocked && data.Reason != string(navigation.ReasonEntityActivated) {
			v.status = "paused, press space to resume"
		} else if e.Type() == events.NavigationLocked {
			v.status = ""
		}
	case events.AssetResult:
		if data.Err != nil {
			v.status = fmt.Sprintf("%s failed to load", data.ProductID)
		} else if v.room.Entities() == len(v.marks) {
			v.status = ""
		}
	case events.Checkout:
		v.status = fmt.Sprintf("order %s placed, %s", data.OrderID, cart.FormatPrice(data.Summary.TotalPrice))
	}
	return nil
}

// mapper projects the walkable region onto a w×h cell grid, -z up.
type mapper struct {
	minX, minZ   float64
	spanX, spanZ float64
	w, h         int
}

func newMapper(b boundary.Boundary, w, h int) mapper {
	c, o := b.Center(), b.Outer()
	return mapper{
		minX: c.X() - o.X, minZ: c.Y() - o.Z,
		spanX: 2 * o.X, spanZ: 2 * o.Z,
		w: w, h: h,
	}
}

func (m mapper) cell(pos mgl64.Vec3) (int, int) {
	col := int(math.Round((pos.X() - m.minX) / m.spanX * float64(m.w-1)))
	row := int(math.Round((pos.Z() - m.minZ) / m.spanZ * float64(m.h-1)))
	return clampInt(col, 0, m.w-1), clampInt(row, 0, m.h-1)
}

func (m mapper) world(col, row int) mgl64.Vec3 {
	x := m.minX + float64(col)/float64(max(m.w-1, 1))*m.spanX
	z := m.minZ + float64(row)/float64(max(m.h-1, 1))*m.spanZ
	return mgl64.Vec3{x, 0, z}
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func headingArrow(yaw float64) rune {
	dx, dz := -math.Sin(yaw), -math.Cos(yaw)
	octant := int(math.Round(math.Atan2(dz, dx) / (math.Pi / 4)))
	return headingArrows[((octant%8)+8)%8]
}

func (v *viewer) draw() {
	v.screen.Clear()
	width, height := v.screen.Size()
	mapW := width
	if v.showCart {
		mapW = max(width-cartWidth, 1)
	}
	mapH := max(height-statusLines, 1)
	m := newMapper(v.bounds, mapW, mapH)

	pose := v.room.Pose()
	floor := tcell.StyleDefault.Foreground(tcell.ColorGray)
	blocked := tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray)
	for row := 0; row < mapH; row++ {
		for col := 0; col < mapW; col++ {
			pos := m.world(col, row)
			pos[1] = pose.Position.Y()
			if v.bounds.Clamp(pos) != pos {
				v.screen.SetContent(col, row, '░', nil, blocked)
				continue
			}
			v.screen.SetContent(col, row, '·', nil, floor)
		}
	}

	for _, mk := range v.marks {
		style := tcell.StyleDefault.Foreground(tcell.ColorYellow)
		if mk.id == v.selected {
			style = style.Reverse(true)
		}
		col, row := m.cell(mk.pos)
		v.screen.SetContent(col, row, mk.char, nil, style)
	}

	col, row := m.cell(pose.Position)
	v.screen.SetContent(col, row, headingArrow(pose.Yaw), nil, tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true))

	state := "walking"
	if !v.room.Engaged() {
		state = "paused"
	}
	v.drawText(0, mapH, width, fmt.Sprintf("x %.1f  z %.1f  heading %.0f°  %s  %d/%d loaded",
		pose.Position.X(), pose.Position.Z(), mgl64.RadToDeg(pose.Yaw), state, v.room.Entities(), len(v.marks)),
		tcell.StyleDefault)
	v.drawText(0, mapH+1, width, fmt.Sprintf("cart: %d items, %s  [c] cart  [x] clear  [enter] checkout  [esc] quit",
		v.summary.TotalCount, cart.FormatPrice(v.summary.TotalPrice)), tcell.StyleDefault)
	v.drawText(0, mapH+2, width, v.status, tcell.StyleDefault.Foreground(tcell.ColorAqua))

	if v.showCart {
		v.drawCart(mapW, mapH)
	}
	v.screen.Show()
}

func (v *viewer) drawCart(x, h int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	v.drawText(x+1, 0, cartWidth-1, "CART", style.Bold(true))
	row := 1
	for _, line := range v.summary.Lines {
		if row >= h {
			break
		}
		v.drawText(x+1, row, cartWidth-1,
			fmt.Sprintf("%-14.14s x%-3d %s", line.Name, line.Quantity, cart.FormatPrice(line.Subtotal)), style)
		row++
	}
	if row < h {
		v.drawText(x+1, row, cartWidth-1, "total "+cart.FormatPrice(v.summary.TotalPrice), style.Bold(true))
	}
}

func (v *viewer) drawText(x, y, maxW int, text string, style tcell.Style) {
	col := 0
	for _, r := range text {
		if col >= maxW {
			return
		}
		v.screen.SetContent(x+col, y, r, nil, style)
		col++
	}
}
