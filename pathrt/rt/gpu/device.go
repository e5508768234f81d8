package gpu

// Buffer is a device storage buffer holding Count records of Stride bytes.
type Buffer interface {
	Count() int
	Stride() int
	Release()
}

// Device allocates and fills storage buffers. Implementations are not
// required to be safe for concurrent use.
type Device interface {
	Allocate(label string, count, stride int) (Buffer, error)
	Write(buf Buffer, data []byte) error
}
