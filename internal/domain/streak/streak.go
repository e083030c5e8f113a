// Package streak derives signed streak state from an ordered sequence of
// judged picks. It holds no state beyond its inputs: identical sequences
// always yield identical streaks.
package streak

// Outcome is the judged result of one pick, in bet order.
type Outcome int8

// Pick outcomes. Skipped marks a cancelled bet: it neither extends nor
// resets a run.
const (
	Skipped Outcome = iota
	Correct
	Incorrect
)

// Streaks summarises the runs in a judged sequence.
type Streaks struct {
	// Current is the trailing run: positive for consecutive correct picks,
	// negative for consecutive incorrect ones, zero when nothing is judged.
	Current int
	// Longest is the longest correct run seen anywhere in the sequence.
	// Incorrect runs never count toward it.
	Longest int
}

// Compute walks outcomes in ascending bet order and folds them into the
// current and longest streaks.
func Compute(outcomes []Outcome) Streaks {
	var st Streaks
	for _, o := range outcomes {
		switch o {
		case Skipped:
			continue
		case Correct:
			if st.Current > 0 {
				st.Current++
			} else {
				st.Current = 1
			}
			if st.Current > st.Longest {
				st.Longest = st.Current
			}
		case Incorrect:
			if st.Current < 0 {
				st.Current--
			} else {
				st.Current = -1
			}
		}
	}
	return st
}
