package spl

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/blocto/solana-go-sdk/common"
)

func testKey(b byte) common.PublicKey {
	var k common.PublicKey
	for i := range k {
		k[i] = b
	}
	return k
}

// --- Rent ---

func TestRent_MinimumBalance(t *testing.T) {
	r := DefaultRent()
	tests := []struct {
		dataLen uint64
		want    uint64
	}{
		{0, 890880},
		{MintSize, 1461600},
		{TokenAccountSize, 2039280},
	}
	for _, tt := range tests {
		if got := r.MinimumBalance(tt.dataLen); got != tt.want {
			t.Errorf("MinimumBalance(%d) = %d, want %d", tt.dataLen, got, tt.want)
		}
	}
	if !r.IsExempt(2039280, TokenAccountSize) {
		t.Error("exact minimum should be exempt")
	}
	if r.IsExempt(2039279, TokenAccountSize) {
		t.Error("one lamport short should not be exempt")
	}
}

// --- Layout ---

func TestMint_RoundTrip(t *testing.T) {
	auth := testKey(1)
	freeze := testKey(2)
	m := &Mint{MintAuthority: &auth, Supply: 1, Decimals: 0, IsInitialized: true, FreezeAuthority: &freeze}
	buf := make([]byte, MintSize)
	if err := PackMint(m, buf); err != nil {
		t.Fatalf("PackMint: %v", err)
	}
	got, err := UnpackMint(buf)
	if err != nil {
		t.Fatalf("UnpackMint: %v", err)
	}
	if *got.MintAuthority != auth || *got.FreezeAuthority != freeze {
		t.Error("authorities not preserved")
	}
	if got.Supply != 1 || !got.IsInitialized {
		t.Errorf("got supply=%d initialized=%v", got.Supply, got.IsInitialized)
	}

	// Revoke both authorities.
	m.MintAuthority = nil
	m.FreezeAuthority = nil
	if err := PackMint(m, buf); err != nil {
		t.Fatalf("PackMint: %v", err)
	}
	got, _ = UnpackMint(buf)
	if got.MintAuthority != nil || got.FreezeAuthority != nil {
		t.Error("cleared authorities should unpack as nil")
	}
	if !bytes.Equal(buf[4:36], make([]byte, 32)) {
		t.Error("cleared authority bytes should be zeroed")
	}
}

func TestMint_Short(t *testing.T) {
	if _, err := UnpackMint(make([]byte, MintSize-1)); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("UnpackMint(short) error = %v, want ErrInvalidLayout", err)
	}
	if err := PackMint(&Mint{}, make([]byte, 10)); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("PackMint(short) error = %v, want ErrInvalidLayout", err)
	}
}

func TestMint_BadOptionTag(t *testing.T) {
	buf := make([]byte, MintSize)
	buf[0] = 7
	if _, err := UnpackMint(buf); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("error = %v, want ErrInvalidLayout", err)
	}
}

func TestTokenAccount_RoundTrip(t *testing.T) {
	native := uint64(5)
	a := &TokenAccount{
		Mint:     testKey(3),
		Owner:    testKey(4),
		Amount:   1,
		State:    AccountStateInitialized,
		IsNative: &native,
	}
	buf := make([]byte, TokenAccountSize)
	if err := PackTokenAccount(a, buf); err != nil {
		t.Fatalf("PackTokenAccount: %v", err)
	}
	got, err := UnpackTokenAccount(buf)
	if err != nil {
		t.Fatalf("UnpackTokenAccount: %v", err)
	}
	if got.Mint != a.Mint || got.Owner != a.Owner || got.Amount != 1 {
		t.Errorf("got %+v", got)
	}
	if got.State != AccountStateInitialized {
		t.Errorf("State = %d, want initialized", got.State)
	}
	if got.IsNative == nil || *got.IsNative != 5 {
		t.Error("IsNative not preserved")
	}
	if got.Delegate != nil || got.CloseAuthority != nil {
		t.Error("unset options should unpack as nil")
	}
}

// --- Extensions ---

func TestMintSpace(t *testing.T) {
	tests := []struct {
		name string
		exts []ExtensionType
		want int
	}{
		{"no extensions", nil, 82},
		{"metadata pointer", []ExtensionType{ExtensionMetadataPointer}, 234},
		{"immutable owner", []ExtensionType{ExtensionImmutableOwner}, 170},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MintSpace(tt.exts...)
			if err != nil {
				t.Fatalf("MintSpace: %v", err)
			}
			if got != tt.want {
				t.Errorf("MintSpace() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAccountSpace(t *testing.T) {
	got, err := AccountSpace(ExtensionImmutableOwner)
	if err != nil {
		t.Fatalf("AccountSpace: %v", err)
	}
	if got != 170 {
		t.Errorf("AccountSpace(ImmutableOwner) = %d, want 170", got)
	}
	if got, _ := AccountSpace(); got != TokenAccountSize {
		t.Errorf("AccountSpace() = %d, want %d", got, TokenAccountSize)
	}
}

func TestMintSpace_VariableLength(t *testing.T) {
	if _, err := MintSpace(ExtensionTokenMetadata); !errors.Is(err, ErrVariableLengthExtension) {
		t.Errorf("error = %v, want ErrVariableLengthExtension", err)
	}
}

func TestSetExtension_FillsReservedSpace(t *testing.T) {
	space, _ := MintSpace(ExtensionMetadataPointer)
	data := make([]byte, space)
	if err := SetAccountType(data, AccountTypeMint); err != nil {
		t.Fatalf("SetAccountType: %v", err)
	}
	mint := testKey(9)
	auth := testKey(8)
	value := MetadataPointer{Authority: &auth, MetadataAddress: &mint}.Pack()

	out, err := SetExtension(data, ExtensionMetadataPointer, value)
	if err != nil {
		t.Fatalf("SetExtension: %v", err)
	}
	if len(out) != space {
		t.Errorf("len = %d, want %d (no realloc)", len(out), space)
	}
	got, err := GetExtension(out, ExtensionMetadataPointer)
	if err != nil {
		t.Fatalf("GetExtension: %v", err)
	}
	p, err := UnpackMetadataPointer(got)
	if err != nil {
		t.Fatalf("UnpackMetadataPointer: %v", err)
	}
	if *p.Authority != auth || *p.MetadataAddress != mint {
		t.Error("pointer not preserved")
	}
	if GetAccountType(out) != AccountTypeMint {
		t.Error("account type lost")
	}
}

func TestSetExtension_GrowsAndReplaces(t *testing.T) {
	space, _ := MintSpace(ExtensionMetadataPointer)
	data := make([]byte, space)
	_ = SetAccountType(data, AccountTypeMint)
	data, _ = SetExtension(data, ExtensionMetadataPointer, make([]byte, MetadataPointerLen))

	data, err := SetExtension(data, ExtensionTokenMetadata, []byte("abc"))
	if err != nil {
		t.Fatalf("SetExtension(append): %v", err)
	}
	if want := space + ExtensionSpace(3); len(data) != want {
		t.Fatalf("len = %d, want %d", len(data), want)
	}

	data, err = SetExtension(data, ExtensionTokenMetadata, []byte("abcdef"))
	if err != nil {
		t.Fatalf("SetExtension(grow): %v", err)
	}
	if want := space + ExtensionSpace(6); len(data) != want {
		t.Fatalf("len = %d, want %d", len(data), want)
	}
	got, _ := GetExtension(data, ExtensionTokenMetadata)
	if string(got) != "abcdef" {
		t.Errorf("value = %q, want abcdef", got)
	}

	data, _ = SetExtension(data, ExtensionTokenMetadata, []byte("a"))
	if want := space + ExtensionSpace(1); len(data) != want {
		t.Fatalf("len after shrink = %d, want %d", len(data), want)
	}

	exts, err := Extensions(data)
	if err != nil {
		t.Fatalf("Extensions: %v", err)
	}
	if len(exts) != 2 || exts[0] != ExtensionMetadataPointer || exts[1] != ExtensionTokenMetadata {
		t.Errorf("Extensions() = %v", exts)
	}
}

func TestGetExtension_Missing(t *testing.T) {
	data := make([]byte, 234)
	if _, err := GetExtension(data, ExtensionTokenMetadata); !errors.Is(err, ErrExtensionNotFound) {
		t.Errorf("error = %v, want ErrExtensionNotFound", err)
	}
}

func TestSetExtension_BaseOnlyAccount(t *testing.T) {
	if _, err := SetExtension(make([]byte, MintSize), ExtensionMetadataPointer, nil); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("error = %v, want ErrInvalidLayout", err)
	}
}

// --- Token metadata ---

func sampleMetadata() *TokenMetadata {
	return &TokenMetadata{
		UpdateAuthority: testKey(1),
		Mint:            testKey(2),
		Name:            "Sword",
		Symbol:          "SWD",
		URI:             "https://x/1.json",
		AdditionalMetadata: []KeyValue{
			{Key: "level", Value: "1"},
		},
	}
}

func TestTokenMetadata_PackedLen(t *testing.T) {
	m := sampleMetadata()
	n, err := m.PackedLen()
	if err != nil {
		t.Fatalf("PackedLen: %v", err)
	}
	want := 64 + (4 + 5) + (4 + 3) + (4 + 16) + 4 + (4 + 5 + 4 + 1)
	if n != want {
		t.Errorf("PackedLen() = %d, want %d", n, want)
	}
	if m.EncodedLen() != n {
		t.Errorf("EncodedLen() = %d, PackedLen() = %d", m.EncodedLen(), n)
	}
}

func TestTokenMetadata_RoundTrip(t *testing.T) {
	m := sampleMetadata()
	b, err := m.Pack()
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	got, err := UnpackTokenMetadata(b)
	if err != nil {
		t.Fatalf("UnpackTokenMetadata: %v", err)
	}
	if got.Name != "Sword" || got.Symbol != "SWD" || got.URI != "https://x/1.json" {
		t.Errorf("got %+v", got)
	}
	if v, ok := got.Get(KeyField("level")); !ok || v != "1" {
		t.Errorf("level = %q, %v", v, ok)
	}
}

func TestTokenMetadata_Update(t *testing.T) {
	m := sampleMetadata()
	if err := m.Update(KeyField("level"), "2"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := m.Update(KeyField("class"), "knight"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := m.Update(Field{Kind: FieldName}, "Great Sword"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(m.AdditionalMetadata) != 2 {
		t.Fatalf("AdditionalMetadata has %d entries, want 2", len(m.AdditionalMetadata))
	}
	if v, _ := m.Get(KeyField("level")); v != "2" {
		t.Errorf("level = %q, want 2", v)
	}
	if m.Name != "Great Sword" {
		t.Errorf("Name = %q", m.Name)
	}
	if err := m.Update(Field{Kind: 9}, "x"); !errors.Is(err, ErrInvalidField) {
		t.Errorf("error = %v, want ErrInvalidField", err)
	}
}

func TestTokenMetadata_LenMonotonic(t *testing.T) {
	prev := 0
	for i := 0; i < 50; i++ {
		m := sampleMetadata()
		m.Name = strings.Repeat("n", i)
		m.URI = strings.Repeat("u", i*2)
		n, err := m.PackedLen()
		if err != nil {
			t.Fatalf("PackedLen: %v", err)
		}
		if n < prev {
			t.Fatalf("PackedLen decreased from %d to %d at %d", prev, n, i)
		}
		prev = n
	}
}

// --- Discriminators ---

func TestInstructionDiscriminator(t *testing.T) {
	got := InstructionDiscriminator("initialize")
	if hex.EncodeToString(got[:]) != "afaf6d1f0d989bed" {
		t.Errorf("InstructionDiscriminator(initialize) = %x", got)
	}
	if InstructionDiscriminator("mint_nft") == got {
		t.Error("different names should not collide")
	}
	if EventDiscriminator("NftMinted") == AccountDiscriminator("NftMinted") {
		t.Error("namespaces should not collide")
	}
}

// --- Instructions ---

func TestDecodeTokenInstruction(t *testing.T) {
	mint := testKey(5)
	auth := testKey(6)

	ix := InitializeMint2(Token2022ProgramID, mint, auth, nil, 0)
	args, err := DecodeTokenInstruction(ix.Data)
	if err != nil {
		t.Fatalf("decode InitializeMint2: %v", err)
	}
	if args.Instruction != TokenInitializeMint2 || *args.Authority != auth || args.FreezeAuthority != nil {
		t.Errorf("InitializeMint2 args = %+v", args)
	}

	ix = MintTo(Token2022ProgramID, mint, testKey(7), auth, 1)
	if ix.ProgramID != Token2022ProgramID {
		t.Errorf("MintTo program = %s", ix.ProgramID.ToBase58())
	}
	args, err = DecodeTokenInstruction(ix.Data)
	if err != nil {
		t.Fatalf("decode MintTo: %v", err)
	}
	if args.Instruction != TokenMintTo || args.Amount != 1 {
		t.Errorf("MintTo args = %+v", args)
	}

	ix = SetAuthority(Token2022ProgramID, mint, auth, AuthorityMintTokens, nil)
	args, err = DecodeTokenInstruction(ix.Data)
	if err != nil {
		t.Fatalf("decode SetAuthority: %v", err)
	}
	if args.Instruction != TokenSetAuthority || args.Authority != nil || args.AuthorityType != AuthorityMintTokens {
		t.Errorf("SetAuthority args = %+v", args)
	}

	ix = InitializeMetadataPointer(mint, &auth, &mint)
	args, err = DecodeTokenInstruction(ix.Data)
	if err != nil {
		t.Fatalf("decode pointer: %v", err)
	}
	if *args.PointerAuthority != auth || *args.PointerAddress != mint {
		t.Errorf("pointer args = %+v", args)
	}

	if _, err := DecodeTokenInstruction([]byte{99}); !errors.Is(err, ErrInvalidInstructionData) {
		t.Errorf("unknown tag error = %v", err)
	}
}

func TestDecodeMetadataInstruction(t *testing.T) {
	mint := testKey(5)
	auth := testKey(6)
	ix, err := InitializeTokenMetadata(Token2022ProgramID, mint, auth, mint, auth, "Sword", "SWD", "https://x/1.json")
	if err != nil {
		t.Fatalf("InitializeTokenMetadata: %v", err)
	}
	if !IsMetadataInstruction(ix.Data) {
		t.Fatal("initialize not recognized")
	}
	in, err := DecodeMetadataInstruction(ix.Data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if in.Initialize == nil || in.Initialize.Name != "Sword" || in.Initialize.URI != "https://x/1.json" {
		t.Errorf("Initialize = %+v", in.Initialize)
	}

	ix, err = UpdateTokenMetadataField(Token2022ProgramID, mint, auth, KeyField("level"), "1")
	if err != nil {
		t.Fatalf("UpdateTokenMetadataField: %v", err)
	}
	in, err = DecodeMetadataInstruction(ix.Data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if in.UpdateField == nil || in.UpdateField.Field.Key != "level" || in.UpdateField.Value != "1" {
		t.Errorf("UpdateField = %+v", in.UpdateField)
	}
	if IsMetadataInstruction([]byte{byte(TokenMintTo), 1, 0, 0, 0, 0, 0, 0, 0}) {
		t.Error("MintTo misread as metadata instruction")
	}
}

func TestDecodeSystemInstruction(t *testing.T) {
	ix := Allocate(testKey(1), 42)
	args, err := DecodeSystemInstruction(ix.Data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if args.Instruction != SystemAllocate || args.Space != 42 {
		t.Errorf("args = %+v", args)
	}
}

func TestFindAssociatedTokenAddress(t *testing.T) {
	wallet := testKey(1)
	mint := testKey(2)
	a1, b1, err := FindAssociatedTokenAddress(wallet, mint, Token2022ProgramID)
	if err != nil {
		t.Fatalf("FindAssociatedTokenAddress: %v", err)
	}
	a2, b2, _ := FindAssociatedTokenAddress(wallet, mint, Token2022ProgramID)
	if a1 != a2 || b1 != b2 {
		t.Error("derivation not deterministic")
	}
	legacy, _, _ := FindAssociatedTokenAddress(wallet, mint, TokenProgramID)
	sdk, _, err := common.FindAssociatedTokenAddress(wallet, mint)
	if err != nil {
		t.Fatalf("sdk derivation: %v", err)
	}
	if legacy != sdk {
		t.Errorf("legacy ATA = %s, sdk = %s", legacy.ToBase58(), sdk.ToBase58())
	}
	if legacy == a1 {
		t.Error("token program should be part of the derivation")
	}
}

// --- Metaplex ---

func TestMetadataAccount_RoundTrip(t *testing.T) {
	d := DataV2{Name: "Shield", Symbol: "SHD", URI: "https://x/2.json"}
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	std := TokenStandardNonFungible
	rec := MetadataAccount{
		Key:             MetaplexKeyMetadataV1,
		UpdateAuthority: testKey(1),
		Mint:            testKey(2),
		Data:            d.PuffedData(),
		IsMutable:       true,
		TokenStandard:   &std,
	}
	b, err := PackPadded(rec, MaxMetadataLen)
	if err != nil {
		t.Fatalf("PackPadded: %v", err)
	}
	if len(b) != MaxMetadataLen {
		t.Fatalf("len = %d, want %d", len(b), MaxMetadataLen)
	}
	got, err := UnpackMetadataAccount(b)
	if err != nil {
		t.Fatalf("UnpackMetadataAccount: %v", err)
	}
	if Unpuff(got.Data.Name) != "Shield" || Unpuff(got.Data.URI) != "https://x/2.json" {
		t.Errorf("data = %+v", got.Data)
	}
	if got.Data.SellerFeeBasisPoints != 0 || got.Data.Creators != nil {
		t.Error("royalty fields should be empty")
	}
}

func TestDataV2_Validate(t *testing.T) {
	tests := []struct {
		name string
		data DataV2
		want error
	}{
		{"long name", DataV2{Name: strings.Repeat("a", 33)}, ErrNameTooLong},
		{"long symbol", DataV2{Symbol: strings.Repeat("a", 11)}, ErrSymbolTooLong},
		{"long uri", DataV2{URI: strings.Repeat("a", 201)}, ErrURITooLong},
		{"fee", DataV2{SellerFeeBasisPoints: 10001}, ErrInvalidBasisPoints},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.data.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMetaplexAddresses(t *testing.T) {
	mint := testKey(3)
	md, err := FindMetadataAddress(mint)
	if err != nil {
		t.Fatalf("FindMetadataAddress: %v", err)
	}
	want, _, err := common.FindProgramAddress(MetadataSeeds(mint), MetadataProgramID)
	if err != nil {
		t.Fatalf("FindProgramAddress: %v", err)
	}
	if md != want {
		t.Errorf("metadata = %s, want %s", md.ToBase58(), want.ToBase58())
	}
	ed, err := FindMasterEditionAddress(mint)
	if err != nil {
		t.Fatalf("FindMasterEditionAddress: %v", err)
	}
	want, _, _ = common.FindProgramAddress(MasterEditionSeeds(mint), MetadataProgramID)
	if ed != want {
		t.Errorf("edition = %s, want %s", ed.ToBase58(), want.ToBase58())
	}
}
