package indexer

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

func TestParseAddresses(t *testing.T) {
	got, err := ParseAddresses([]string{" 0x1000000000000000000000000000000000000001 ", ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != tokenAddr {
		t.Fatalf("unexpected addresses: %v", got)
	}
	if _, err := ParseAddresses([]string{"0x1234"}); err == nil {
		t.Fatalf("expected error for short address")
	}
}

func TestParseTopic0(t *testing.T) {
	transfer := crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))
	got, err := ParseTopic0([]string{transfer.Hex()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != transfer {
		t.Fatalf("unexpected topics: %v", got)
	}
	if _, err := ParseTopic0([]string{"0xdeadbeef"}); err == nil {
		t.Fatalf("expected length error")
	}
	if _, err := ParseTopic0([]string{"zz"}); err == nil {
		t.Fatalf("expected hex error")
	}
}

func TestParseAddressesDeduplicates(t *testing.T) {
	got, err := ParseAddresses([]string{tokenAddr.Hex(), "0x1000000000000000000000000000000000000001"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one address, got %v", got)
	}
}
