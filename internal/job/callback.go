package job

// Callback observes a Job's lifecycle. Each method is invoked with
// the job passed explicitly — never stored — so implementations never
// need to hold a back-reference to the Job that owns them, which is
// what keeps Job -> Callback -> Job from becoming an ownership cycle.
//
// Every method's default behavior (see NopCallback) is to forward to
// the next link in the chain, if any, so callers can compose
// observers without re-implementing every method.
type Callback interface {
	Ready(j *Job)
	Started(j *Job)
	Finished(j *Job)
	Canceled(j *Job)
	NameChanged(j *Job, old, new string)
	DescriptionChanged(j *Job, old, new string)
	IDChanged(j *Job, old, new string)
	PercentCompleteChanged(j *Job, old, new float64)
}

// NopCallback is a Callback whose every method forwards to Next, or
// does nothing if Next is nil. Embed it to implement only the events
// you care about.
type NopCallback struct {
	Next Callback
}

func (c *NopCallback) Ready(j *Job) {
	if c.Next != nil {
		c.Next.Ready(j)
	}
}

func (c *NopCallback) Started(j *Job) {
	if c.Next != nil {
		c.Next.Started(j)
	}
}

func (c *NopCallback) Finished(j *Job) {
	if c.Next != nil {
		c.Next.Finished(j)
	}
}

func (c *NopCallback) Canceled(j *Job) {
	if c.Next != nil {
		c.Next.Canceled(j)
	}
}

func (c *NopCallback) NameChanged(j *Job, old, new string) {
	if c.Next != nil {
		c.Next.NameChanged(j, old, new)
	}
}

func (c *NopCallback) DescriptionChanged(j *Job, old, new string) {
	if c.Next != nil {
		c.Next.DescriptionChanged(j, old, new)
	}
}

func (c *NopCallback) IDChanged(j *Job, old, new string) {
	if c.Next != nil {
		c.Next.IDChanged(j, old, new)
	}
}

func (c *NopCallback) PercentCompleteChanged(j *Job, old, new float64) {
	if c.Next != nil {
		c.Next.PercentCompleteChanged(j, old, new)
	}
}

var _ Callback = (*NopCallback)(nil)

// FuncCallback lets a caller attach individual closures without
// writing a full Callback implementation; any nil field is a no-op
// and does not forward anywhere (use NopCallback.Next for chaining).
type FuncCallback struct {
	OnReady                  func(j *Job)
	OnStarted                func(j *Job)
	OnFinished               func(j *Job)
	OnCanceled               func(j *Job)
	OnNameChanged            func(j *Job, old, new string)
	OnDescriptionChanged     func(j *Job, old, new string)
	OnIDChanged              func(j *Job, old, new string)
	OnPercentCompleteChanged func(j *Job, old, new float64)
}

func (c *FuncCallback) Ready(j *Job) {
	if c.OnReady != nil {
		c.OnReady(j)
	}
}

func (c *FuncCallback) Started(j *Job) {
	if c.OnStarted != nil {
		c.OnStarted(j)
	}
}

func (c *FuncCallback) Finished(j *Job) {
	if c.OnFinished != nil {
		c.OnFinished(j)
	}
}

func (c *FuncCallback) Canceled(j *Job) {
	if c.OnCanceled != nil {
		c.OnCanceled(j)
	}
}

func (c *FuncCallback) NameChanged(j *Job, old, new string) {
	if c.OnNameChanged != nil {
		c.OnNameChanged(j, old, new)
	}
}

func (c *FuncCallback) DescriptionChanged(j *Job, old, new string) {
	if c.OnDescriptionChanged != nil {
		c.OnDescriptionChanged(j, old, new)
	}
}

func (c *FuncCallback) IDChanged(j *Job, old, new string) {
	if c.OnIDChanged != nil {
		c.OnIDChanged(j, old, new)
	}
}

func (c *FuncCallback) PercentCompleteChanged(j *Job, old, new float64) {
	if c.OnPercentCompleteChanged != nil {
		c.OnPercentCompleteChanged(j, old, new)
	}
}

var _ Callback = (*FuncCallback)(nil)
