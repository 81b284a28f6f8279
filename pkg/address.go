package pkg

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ValidateEVMAddress checks that address is 0x-prefixed 20-byte hex. All-lower and
// all-upper forms are accepted as is; mixed case must match the EIP-55 checksum.
func ValidateEVMAddress(address string) error {
	if !strings.HasPrefix(address, "0x") && !strings.HasPrefix(address, "0X") {
		return fmt.Errorf("address %q: missing 0x prefix", address)
	}
	if !common.IsHexAddress(address) {
		return fmt.Errorf("address %q: not a 20-byte hex value", address)
	}

	body := address[2:]
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return nil
	}
	if checksummed := common.HexToAddress(address).Hex(); checksummed[2:] != body {
		return fmt.Errorf("address %q: bad checksum", address)
	}

	return nil
}

// ParseEVMAddress validates address and returns it in canonical form.
func ParseEVMAddress(address string) (common.Address, error) {
	if err := ValidateEVMAddress(address); err != nil {
		return common.Address{}, err
	}
	return common.HexToAddress(address), nil
}
