// Copyright 2024 The Erigon Authors
// SPDX-License-Identifier: LGPL-3.0-only
package staticfile

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

// codec compresses individual column entries before they are appended to
// a partition's data file. Segments are columnar but each entry is
// compressed independently so random-access reads never need to
// decompress more than one record.
type codec struct {
	encOnce sync.Once
	enc     *zstd.Encoder
	decOnce sync.Once
	dec     *zstd.Decoder
}

func (c *codec) encoder() *zstd.Encoder {
	c.encOnce.Do(func() {
		c.enc, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	})
	return c.enc
}

func (c *codec) decoder() *zstd.Decoder {
	c.decOnce.Do(func() {
		c.dec, _ = zstd.NewReader(nil)
	})
	return c.dec
}

func (c *codec) compress(dst, src []byte) []byte {
	return c.encoder().EncodeAll(src, dst)
}

func (c *codec) decompress(dst, src []byte) ([]byte, error) {
	return c.decoder().DecodeAll(src, dst)
}

var sharedCodec = &codec{}
