package parser

import "errors"

var ErrParse = errors.New("error unreadable report file")
