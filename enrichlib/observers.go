package enrichlib

// NoopObserver ignores all events.
type NoopObserver struct{}

func (NoopObserver) Progress(Progress) {}

func (NoopObserver) LookupError(string, error) {}

// ObserverFuncs adapts plain functions to Observer. Nil fields are
// skipped.
type ObserverFuncs struct {
	OnProgress    func(Progress)
	OnLookupError func(ip string, err error)
}

func (o ObserverFuncs) Progress(p Progress) {
	if o.OnProgress != nil {
		o.OnProgress(p)
	}
}

func (o ObserverFuncs) LookupError(ip string, err error) {
	if o.OnLookupError != nil {
		o.OnLookupError(ip, err)
	}
}

type multiObserver []Observer

func (m multiObserver) Progress(p Progress) {
	for _, v := range m {
		v.Progress(p)
	}
}

func (m multiObserver) LookupError(ip string, err error) {
	for _, v := range m {
		v.LookupError(ip, err)
	}
}

// MultiObserver broadcasts events to all given observers in order.
func MultiObserver(observers ...Observer) Observer {
	rv := make(multiObserver, 0, len(observers))

	for _, v := range observers {
		if v != nil {
			rv = append(rv, v)
		}
	}

	return rv
}

type noopLogger struct{}

func (noopLogger) LookupError(string, string, error) {}

func (noopLogger) RunInfo(Summary) {}
