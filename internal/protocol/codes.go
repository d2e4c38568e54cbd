package protocol

// Command codes sent by the client. Field 0 of every request.
const (
	CmdStart          = "START"
	CmdLogin          = "LOGIN"
	CmdSignUp         = "SGNUP"
	CmdSendCode       = "SCODE"
	CmdVerifyCode     = "VRFYC"
	CmdUpdatePassword = "UPDTE"
	CmdLogout         = "LGOUT"
	CmdLogAsset       = "LGAST"
	CmdAssetList      = "ASKLST"
)

// Response code prefixes acknowledged by the server. A reply code is
// matched by prefix so servers may suffix diagnostic characters.
const (
	RespAccepted        = "ACCPT"
	RespLoggedIn        = "LOGED"
	RespSignedUp        = "SIGND"
	RespCodeSent        = "SENTM"
	RespCodeVerified    = "VRFYD"
	RespPasswordUpdated = "UPDTD"
	RespLoggedOut       = "EXTLG"
	RespAssetSaved      = "SAVED"
	RespAssetList       = "ASLIST"

	// ErrPrefix marks a server-side rejection: validation, auth,
	// quota. Distinct from transport failure.
	ErrPrefix = "ERR"
)
