package provision

import "errors"

var (
	ErrProvision           = errors.New("provisioning failed")
	ErrCommandFailed       = errors.New("command failed")
	ErrFileSystemOperation = errors.New("file system operation failed")
)
