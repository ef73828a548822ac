package signing

const (
	// ClobDomainName is the EIP-712 domain for L1 auth attestations.
	ClobDomainName = "ClobAuthDomain"

	// ClobVersion is the EIP-712 domain version.
	ClobVersion = "1"

	// MsgToSign is the fixed attestation message.
	MsgToSign = "This message attests that I control the given wallet"

	// OrderDomainName is the EIP-712 domain for exchange orders.
	OrderDomainName = "Polymarket CTF Exchange"

	// OrderDomainVersion is the order domain version.
	OrderDomainVersion = "1"
)
