package codec

import (
	"sync"

	"github.com/wippyai/fastcodec/pmap"
	"github.com/wippyai/fastcodec/wire"
)

const (
	// Pool limits to prevent memory bloat
	poolMaxWriterCap = 64 << 10
	poolMaxPmapBits  = 4096
)

// segment writer pool for encoding nested segments
var writerPool = sync.Pool{
	New: func() any {
		return wire.NewWriter()
	},
}

func getWriter() *wire.Writer {
	return writerPool.Get().(*wire.Writer)
}

func putWriter(w *wire.Writer) {
	if w == nil || cap(w.Bytes()) > poolMaxWriterCap {
		return // reject oversized
	}
	w.Reset()
	writerPool.Put(w)
}

var pmapPool = sync.Pool{
	New: func() any {
		return pmap.New(0)
	},
}

func getPmap(capacity int) *pmap.Map {
	m := pmapPool.Get().(*pmap.Map)
	m.Reset(capacity)
	return m
}

func putPmap(m *pmap.Map) {
	if m == nil || m.Capacity() > poolMaxPmapBits {
		return
	}
	pmapPool.Put(m)
}
