package input

// Direction is one of the four latched movement keys.
type Direction uint8

const (
	DirForward Direction = iota
	DirBackward
	DirLeft
	DirRight
	dirCount
)

// keyMap binds physical key codes (KeyboardEvent.code names) to directions.
var keyMap = map[string]Direction{
	"ArrowUp":    DirForward,
	"KeyW":       DirForward,
	"ArrowDown":  DirBackward,
	"KeyS":       DirBackward,
	"ArrowLeft":  DirLeft,
	"KeyA":       DirLeft,
	"ArrowRight": DirRight,
	"KeyD":       DirRight,
}

var _ Source = (*Desktop)(nil)

// Desktop latches one boolean per direction. Aliased keys share the latch,
// so releasing KeyW also releases a held ArrowUp.
type Desktop struct {
	held      [dirCount]bool
	normalize bool
}

func NewDesktop(normalizeDiagonal bool) *Desktop {
	return &Desktop{normalize: normalizeDiagonal}
}

func (d *Desktop) Class() DeviceClass { return DeviceDesktop }

// HandleKey records a key-down or key-up. It reports whether the key is one
// of the movement keys.
func (d *Desktop) HandleKey(code string, down bool) bool {
	dir, ok := keyMap[code]
	if !ok {
		return false
	}
	d.held[dir] = down
	return true
}

// Held reports the latch state of dir.
func (d *Desktop) Held(dir Direction) bool {
	return d.held[dir]
}

// Intent sums the held directions. Diagonals are not renormalized unless the
// source was built with normalization on.
func (d *Desktop) Intent() Intent {
	var i Intent
	if d.held[DirForward] {
		i.Forward++
	}
	if d.held[DirBackward] {
		i.Forward--
	}
	if d.held[DirRight] {
		i.Lateral++
	}
	if d.held[DirLeft] {
		i.Lateral--
	}
	if d.normalize {
		return i.Normalized()
	}
	return i
}

func (d *Desktop) Detach() {
	d.held = [dirCount]bool{}
}
