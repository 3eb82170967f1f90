// Package mmap maps cached latent files read-only into memory.
//
//	m, err := mmap.Open("clip.pt")
//	if err != nil { ... }
//	defer m.Close()
//	data := m.Bytes() // valid until Close
//
// Unix platforms use mmap(2) through golang.org/x/sys/unix. Other platforms
// fall back to reading the file into the heap behind the same API.
package mmap
