package client

import "errors"

var ErrNoServer = errors.New("alias server is not configured")
