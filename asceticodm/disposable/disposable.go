package disposable

type Disposable interface {
	Dispose()
}

type callback func()

func (c callback) Dispose() {
	c()
}

func NewDisposable(fn func()) Disposable {
	return callback(fn)
}

type composite []Disposable

func (c composite) Dispose() {
	for _, d := range c {
		d.Dispose()
	}
}

func NewCompositeDisposable(delegates ...Disposable) Disposable {
	return composite(delegates)
}
