// Package lsmkit provides embeddable LSM storage building blocks for Go:
// a sharded, capacity-bounded block cache and an append-once sorted table
// writer with a matching reader.
//
// # Quick Start
//
// Cache:
//
//	c, _ := cache.LRU(64 << 20).
//		HighPriorityPoolRatio(0.3).
//		Build()
//	defer c.Close()
//
//	_ = c.Insert([]byte("blk:7"), block, int64(len(block.data)), cache.PriorityLow, nil)
//	if h, ok := c.Lookup([]byte("blk:7")); ok {
//		use(h.Value())
//		h.Release()
//	}
//
// Sorted tables:
//
//	w := sstable.NewWriter()
//	_ = w.Open("level0.sst")
//	_ = w.Add([]byte("a"), []byte("1"))
//	_ = w.Add([]byte("b"), []byte("2"))
//	summary, _ := w.Finish()
//	fmt.Println(summary.EntryCount, summary.FileSize)
//
// # Design
//
//   - Caches are sharded by key hash; each shard holds an independent
//     eviction structure (LRU with an optional high-priority pool, or a
//     clock ring) behind its own mutex.
//   - Values stay pinned while a Handle is outstanding; eviction and erase
//     defer the release callback to the final Release.
//   - Table files are immutable once finished. Keys must arrive in strictly
//     increasing comparator order and every write error is terminal.
//   - Shared memory and IO budgets plug in through resource.Controller.
package lsmkit
