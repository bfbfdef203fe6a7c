package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ CredentialCache = (*MemoryCredentialCache)(nil)
	_ Signer          = APIKeySigner{}
	_ error           = (*DecodeError)(nil)
	_ error           = (*APIError)(nil)

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
