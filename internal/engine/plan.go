package engine

// Block is a contiguous byte range of a file, the unit of parallel work.
type Block struct {
	Offset int64
	Length int64
	Index  int
}

// Plan splits [0, size) into consecutive blocks of at most blockSize bytes.
// The result covers the range exactly once with no gaps or overlaps and is
// read-only once handed to workers.
func Plan(size, blockSize int64) []Block {
	if size <= 0 || blockSize <= 0 {
		return nil
	}

	blocks := make([]Block, 0, (size+blockSize-1)/blockSize)

	var offset int64
	for index := 0; offset < size; index++ {
		length := blockSize
		if remaining := size - offset; remaining < length {
			length = remaining
		}

		blocks = append(blocks, Block{Offset: offset, Length: length, Index: index})
		offset += length
	}

	return blocks
}
