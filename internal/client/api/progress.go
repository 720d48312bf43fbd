package api

import "io"

// progressReader reports how much of a known-length stream has been read,
// as an integer percentage. The callback fires only when the percentage
// changes, so it moves monotonically from 0 to 100.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	last     int
	progress func(int)
}

func newProgressReader(r io.Reader, total int64, progress func(int)) *progressReader {
	return &progressReader{r: r, total: total, last: -1, progress: progress}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.progress != nil && p.total > 0 {
		pct := int(p.read * 100 / p.total)
		if pct > 100 {
			pct = 100
		}
		if pct != p.last {
			p.last = pct
			p.progress(pct)
		}
	}
	return n, err
}
