package core

// Signer is one entry in an account's signer set.
type Signer struct {
	Address string // ed25519 public key strkey
	Weight  int32
}

// AuthorizationPolicy is an account's live signing policy: its ed25519 signer
// set and the medium threshold the summed signature weights must reach. It is
// fetched fresh for every verification and never cached, since the policy can
// change between challenge issuance and verification.
type AuthorizationPolicy struct {
	Signers         []Signer
	MediumThreshold int32
}
