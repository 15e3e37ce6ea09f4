package vault

import "io"

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// drain reads what the backend left unread so the total can be compared
// with the announced size.
func (c *countingReader) drain() (int64, error) {
	_, err := io.Copy(io.Discard, c)
	return c.n, err
}
