// Command heapdemo exercises the allocator end to end: it initializes a heap,
// allocates a block, writes and reads a byte pattern through it, frees the
// block, and prints the heap's block map as JSON.
package main

import (
	"fmt"
	"os"

	"github.com/SirDamis/dynamic-memory-allocation/heap"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"golang.org/x/exp/slog"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr))

	h := heap.New(heap.NewBoundedGrower(1 << 20))
	if err := h.Init(); err != nil {
		logger.Error("heap initialization failed", slog.Any("error", err))
		os.Exit(1)
	}

	block, err := h.Allocate(48)
	if err != nil {
		logger.Error("allocation failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("allocated", slog.Int("offset", block), slog.Int("payloadBytes", h.PayloadSize(block)))

	payload := h.Payload(block)
	for i := 0; i < 48; i++ {
		payload[i] = byte('a' + i%26)
	}
	fmt.Printf("%s\n", payload[:48])

	h.Free(block)
	logger.Info("freed", slog.Int("offset", block))

	writer := jwriter.NewWriter()
	obj := writer.Object()
	h.HeapJsonData(obj)
	obj.End()
	if writer.Error() != nil {
		logger.Error("building the heap map failed", slog.Any("error", writer.Error()))
		os.Exit(1)
	}
	fmt.Printf("%s\n", writer.Bytes())
}
