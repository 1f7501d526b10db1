package fakeserver

import "errors"

var errBadRegistration = errors.New("registration frame without type")
