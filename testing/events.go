package testing

import "github.com/opd-ai/toxsession/interfaces"

// Constructors for the engine events tests inject most often.

func SelfConnection(connection uint32) interfaces.RawEvent {
	return interfaces.RawEvent{Tag: interfaces.TagSelfConnectionStatus, Value: connection}
}

func FriendConnection(pk [32]byte, connection uint32) interfaces.RawEvent {
	return interfaces.RawEvent{Tag: interfaces.TagFriendConnectionStatus, FriendKey: pk, Value: connection}
}

func FriendRequest(pk [32]byte, message string) interfaces.RawEvent {
	return interfaces.RawEvent{Tag: interfaces.TagFriendRequest, FriendKey: pk, Data: []byte(message)}
}

func FriendMessage(pk [32]byte, message string) interfaces.RawEvent {
	return interfaces.RawEvent{
		Tag:       interfaces.TagFriendMessage,
		FriendKey: pk,
		Value:     interfaces.RawMessageNormal,
		Data:      []byte(message),
	}
}

func FriendName(pk [32]byte, name string) interfaces.RawEvent {
	return interfaces.RawEvent{Tag: interfaces.TagFriendName, FriendKey: pk, Data: []byte(name)}
}

func FriendStatusMessage(pk [32]byte, message string) interfaces.RawEvent {
	return interfaces.RawEvent{Tag: interfaces.TagFriendStatusMessage, FriendKey: pk, Data: []byte(message)}
}

func FriendTyping(pk [32]byte, typing bool) interfaces.RawEvent {
	return interfaces.RawEvent{Tag: interfaces.TagFriendTyping, FriendKey: pk, Flag: typing}
}

func FileOffer(pk [32]byte, fileNumber uint32, size uint64, filename string) interfaces.RawEvent {
	return interfaces.RawEvent{
		Tag:        interfaces.TagFileRecv,
		FriendKey:  pk,
		FileNumber: fileNumber,
		Value:      interfaces.RawFileKindData,
		FileSize:   size,
		Data:       []byte(filename),
	}
}

func FileControl(pk [32]byte, fileNumber, control uint32) interfaces.RawEvent {
	return interfaces.RawEvent{Tag: interfaces.TagFileRecvControl, FriendKey: pk, FileNumber: fileNumber, Value: control}
}

func FileChunk(pk [32]byte, fileNumber uint32, position uint64, data []byte) interfaces.RawEvent {
	return interfaces.RawEvent{Tag: interfaces.TagFileRecvChunk, FriendKey: pk, FileNumber: fileNumber, Position: position, Data: data}
}

func ChunkRequest(pk [32]byte, fileNumber uint32, position uint64, length uint32) interfaces.RawEvent {
	return interfaces.RawEvent{Tag: interfaces.TagFileChunkRequest, FriendKey: pk, FileNumber: fileNumber, Position: position, Value: length}
}

func LosslessPacket(pk [32]byte, data []byte) interfaces.RawEvent {
	return interfaces.RawEvent{Tag: interfaces.TagFriendLosslessPacket, FriendKey: pk, Data: data}
}
