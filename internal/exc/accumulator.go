// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

import "sync"

// Reporter is used to accumulate and report errors while parsing. A parser
// may report an exception and keep going; when Report returns a non-nil
// value the exception is fatal and the parser must stop.
type Reporter interface {
	// Report adds the given record to the set. If this method returns an error
	// then the given error is considered fatal.
	Report(Exception) Exception
	// Reported returns the set of accumulated exceptions.
	Reported() []Exception
	// Fatal returns only the accumulated exceptions that were fatal.
	Fatal() []Exception
}

// NewReporter returns a concurrent-safe implementation of Reporter. The given
// codes are downgraded to warnings in addition to the defaults.
func NewReporter(nonFatal []string) Reporter {
	nf := make(map[string]bool, len(defaultNonFatal))
	for k := range defaultNonFatal {
		nf[k] = true
	}
	for _, k := range nonFatal {
		nf[k] = true
	}
	return &reporterLock{
		Reporter: &reporter{
			nonFatal: nf,
		},
		lock: &sync.Mutex{},
	}
}

type reporter struct {
	reported []Exception
	nonFatal map[string]bool
}

func (r *reporter) Report(e Exception) Exception {
	r.reported = append(r.reported, e)
	if r.nonFatal[e.Code()] {
		return nil
	}
	return e
}

func (r *reporter) Reported() []Exception {
	return r.reported
}

func (r *reporter) Fatal() []Exception {
	var out []Exception
	for _, e := range r.reported {
		if !r.nonFatal[e.Code()] {
			out = append(out, e)
		}
	}
	return out
}

type reporterLock struct {
	Reporter
	lock sync.Locker
}

func (r *reporterLock) Report(e Exception) Exception {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.Reporter.Report(e)
}

func (r *reporterLock) Reported() []Exception {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.Reporter.Reported()
}

func (r *reporterLock) Fatal() []Exception {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.Reporter.Fatal()
}
