package cashu

type CashuErrCode int

// Error represents an error returned by the mint
type Error struct {
	Detail string       `json:"detail"`
	Code   CashuErrCode `json:"code"`
}

func BuildCashuError(detail string, code CashuErrCode) *Error {
	return &Error{Detail: detail, Code: code}
}

func (e Error) Error() string {
	return e.Detail
}

// Common error codes
const (
	StandardErrCode CashuErrCode = 10000

	BlindedMessageAlreadySignedErrCode CashuErrCode = 10002
	InvalidProofErrCode                CashuErrCode = 10003

	ProofAlreadyUsedErrCode        CashuErrCode = 11001
	InsufficientProofAmountErrCode CashuErrCode = 11002
	UnitErrCode                    CashuErrCode = 11005

	UnknownKeysetErrCode  CashuErrCode = 12001
	InactiveKeysetErrCode CashuErrCode = 12002
)

var (
	StandardErr                 = Error{Detail: "mint is currently unable to process request", Code: StandardErrCode}
	EmptyBodyErr                = Error{Detail: "request body cannot be empty", Code: StandardErrCode}
	UnknownKeysetErr            = Error{Detail: "unknown keyset", Code: UnknownKeysetErrCode}
	UnitNotSupportedErr         = Error{Detail: "unit not supported", Code: UnitErrCode}
	InvalidBlindedMessageAmount = Error{Detail: "invalid amount in blinded message", Code: StandardErrCode}
	BlindedMessageAlreadySigned = Error{Detail: "blinded message already signed", Code: BlindedMessageAlreadySignedErrCode}
	ProofAlreadyUsedErr         = Error{Detail: "proof already used", Code: ProofAlreadyUsedErrCode}
	ProofPendingErr             = Error{Detail: "proof is pending", Code: ProofAlreadyUsedErrCode}
	InvalidProofErr             = Error{Detail: "invalid proof", Code: InvalidProofErrCode}
	NoProofsProvided            = Error{Detail: "no proofs provided", Code: InvalidProofErrCode}
	DuplicateProofs             = Error{Detail: "duplicate proofs", Code: InvalidProofErrCode}
	InsufficientProofsAmount    = Error{
		Detail: "amount of input proofs is below amount needed for transaction",
		Code:   InsufficientProofAmountErrCode,
	}
	InactiveKeysetSignatureRequest = Error{Detail: "requested signature from inactive keyset", Code: InactiveKeysetErrCode}
)
