package inspect

import "errors"

var ErrInspect = errors.New("image inspection failed")
