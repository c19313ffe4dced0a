package channel

// Recorder is an Output that remembers every angle written to it. The simulator and
// tests use it in place of a servo
type Recorder struct {
	Writes []int
}

var _ Output = &Recorder{}

// SetAngle implements Output
func (r *Recorder) SetAngle(angle int) error {
	r.Writes = append(r.Writes, angle)
	return nil
}

// Last returns the most recent write and false if nothing was written yet
func (r *Recorder) Last() (int, bool) {
	if len(r.Writes) == 0 {
		return 0, false
	}
	return r.Writes[len(r.Writes)-1], true
}

// Reset forgets all writes
func (r *Recorder) Reset() {
	r.Writes = nil
}
