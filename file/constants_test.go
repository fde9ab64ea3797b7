package file

// Test friend numbers.
const (
	testOnlineFriend  uint32 = 0
	testOfflineFriend uint32 = 1
	testMissingFriend uint32 = 7
)

// Common test file sizes.
const (
	testFileSize   = 100
	testFileSize1K = 1024
)

const testFilename = "a.txt"
