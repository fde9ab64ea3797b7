package toxsession

import "github.com/opd-ai/toxsession/file"

// FileSend offers a file to a connected friend and returns its file number.
// Pass file.SizeUnknown for streams and a nil fileID for a random one.
// Errors are file.SendError values.
func (s *Session) FileSend(friendNumber uint32, kind file.Kind, fileSize uint64, fileID *[32]byte, filename []byte) (uint32, error) {
	s.checkOpen()
	n, err := s.files.Send(friendNumber, kind, fileSize, fileID, filename)
	if err != nil {
		return 0, err
	}
	s.metrics.SetTransfers(s.files.Active())
	return n, nil
}

// FileControl resumes, pauses or cancels a transfer. Resuming an inbound
// offer accepts it. Errors are file.ControlError values.
func (s *Session) FileControl(friendNumber, fileNumber uint32, control file.Control) error {
	s.checkOpen()
	err := s.files.Control(friendNumber, fileNumber, control)
	s.metrics.SetTransfers(s.files.Active())
	return err
}

// FileSeek moves the start position of a transfer before any data has moved.
// Errors are file.SeekError values.
func (s *Session) FileSeek(friendNumber, fileNumber uint32, position uint64) error {
	s.checkOpen()
	return s.files.Seek(friendNumber, fileNumber, position)
}

// FileSendChunk answers a FileChunkRequest event. The chunk must match the
// request exactly; an empty chunk completes the transfer. Errors are
// file.SendChunkError values.
func (s *Session) FileSendChunk(friendNumber, fileNumber uint32, position uint64, data []byte) error {
	s.checkOpen()
	err := s.files.SendChunk(friendNumber, fileNumber, position, data)
	s.metrics.SetTransfers(s.files.Active())
	return err
}

// FileGetFileID returns the identifier of a live transfer.
func (s *Session) FileGetFileID(friendNumber, fileNumber uint32) ([32]byte, error) {
	s.checkOpen()
	return s.files.FileID(friendNumber, fileNumber)
}

// FileTransfer returns a live transfer. The value is owned by the session
// and must not be retained across Iterate calls.
func (s *Session) FileTransfer(friendNumber, fileNumber uint32) (*file.Transfer, error) {
	s.checkOpen()
	return s.files.Get(friendNumber, fileNumber)
}

// FileTransfers returns the live transfers of a friend.
func (s *Session) FileTransfers(friendNumber uint32) []*file.Transfer {
	s.checkOpen()
	return s.files.Transfers(friendNumber)
}
