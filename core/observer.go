package core

import "time"

// Resolution describes one finished Container.Get call.
type Resolution struct {
	Name string
	// Type is empty when the name had no definition.
	Type TypeID
	// Cached is true when the instance existed before the call.
	Cached   bool
	Duration time.Duration
	Err      error
}

// Observer receives resolution events. The container itself never logs;
// logging and metrics hang off this interface.
type Observer interface {
	ObserveResolution(r Resolution)
	// ObserveBuild is called once per newly constructed instance, including
	// nested dependencies.
	ObserveBuild(t TypeID, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveResolution(Resolution)       {}
func (nopObserver) ObserveBuild(TypeID, time.Duration) {}

type multiObserver []Observer

func (m multiObserver) ObserveResolution(r Resolution) {
	for _, o := range m {
		o.ObserveResolution(r)
	}
}

func (m multiObserver) ObserveBuild(t TypeID, d time.Duration) {
	for _, o := range m {
		o.ObserveBuild(t, d)
	}
}

// Observers fans events out to every non-nil observer in order.
func Observers(obs ...Observer) Observer {
	out := make(multiObserver, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}
