package spl

import "crypto/sha256"

// Discriminator is the 8-byte prefix selecting an instruction, event or
// account type.
type Discriminator [8]byte

// NamespaceDiscriminator hashes "namespace:name" and keeps the first 8 bytes.
func NamespaceDiscriminator(namespace, name string) Discriminator {
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	var d Discriminator
	copy(d[:], sum[:8])
	return d
}

// InstructionDiscriminator is the Anchor discriminator of instruction name.
func InstructionDiscriminator(name string) Discriminator {
	return NamespaceDiscriminator("global", name)
}

// EventDiscriminator is the Anchor discriminator of event name.
func EventDiscriminator(name string) Discriminator {
	return NamespaceDiscriminator("event", name)
}

// AccountDiscriminator is the Anchor discriminator of account type name.
func AccountDiscriminator(name string) Discriminator {
	return NamespaceDiscriminator("account", name)
}

// Token metadata interface instruction discriminators.
var (
	MetadataInitializeDiscriminator  = NamespaceDiscriminator("spl_token_metadata_interface", "initialize_account")
	MetadataUpdateFieldDiscriminator = NamespaceDiscriminator("spl_token_metadata_interface", "updating_field")
)

// HasPrefix reports whether data starts with d.
func (d Discriminator) HasPrefix(data []byte) bool {
	return len(data) >= len(d) && [8]byte(data[:8]) == d
}
