package origin

const (
	securityEventMalformedSelectedHop = "malformed_selected_hop"
	securityEventMalformedForwarded   = "malformed_forwarded"
	securityEventChainTooLong         = "chain_too_long"
	securityEventUntrustedPeer        = "untrusted_peer"
	securityEventMissingHeaders       = "missing_headers"
)
