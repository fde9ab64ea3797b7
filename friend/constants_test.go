package friend

import "time"

const (
	// testRequestMessage is a friend request body used across tests.
	testRequestMessage = "hi, it's Bob"

	// testNospam is the nospam carried by test addresses.
	testNospam uint32 = 0xDEADBEEF

	// testAdvance moves the mock clock between observations.
	testAdvance = 2 * time.Second
)
