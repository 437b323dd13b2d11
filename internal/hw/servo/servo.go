package servo

// Servo commands one axis to an absolute angle in degrees. The call is
// fire-and-forget: hobby servos offer no position feedback, so the caller's
// bookkeeping is the only record of where the horn should be.
type Servo interface {
	SetAngle(deg int) error
}

// Recorder is a Servo for tests and mock mode: it remembers every
// commanded angle.
type Recorder struct {
	Name   string
	Angles []int
}

// NewRecorder creates a recording servo.
func NewRecorder(name string) *Recorder {
	return &Recorder{Name: name}
}

func (r *Recorder) SetAngle(deg int) error {
	r.Angles = append(r.Angles, deg)
	return nil
}

// Last returns the most recently commanded angle, or -1 if none.
func (r *Recorder) Last() int {
	if len(r.Angles) == 0 {
		return -1
	}
	return r.Angles[len(r.Angles)-1]
}
