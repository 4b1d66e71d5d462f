package output

import "sync"

var jsonBytesPool = &sync.Pool{
	New: func() any {
		return make([]byte, 0, 4096)
	},
}

func releaseJSONBytes(b []byte) {
	jsonBytesPool.Put(b[:0])
}
