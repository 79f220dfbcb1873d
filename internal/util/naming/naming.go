// Package naming derives Azure resource names from a group name and a
// per-run unique identifier. All resources created by a run share the same
// `<group>-<id>` prefix so they can be identified and cleaned up together.
package naming

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Azure storage account names are limited to 24 lowercase alphanumeric
// characters.
const storageAccountMaxLen = 24

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// UniqueIDLength is the length of the per-run identifier token.
const UniqueIDLength = 6

func ResourceGroup(group, id string) string {
	return fmt.Sprintf("%s-%s-rg", group, id)
}

// StorageAccount strips hyphens and truncates so the result always matches
// ^[a-z0-9]{1,24}$.
func StorageAccount(group, id string) string {
	name := strings.ReplaceAll(fmt.Sprintf("%s%ssa", group, id), "-", "")
	name = strings.ToLower(name)
	if len(name) > storageAccountMaxLen {
		name = name[:storageAccountMaxLen]
	}
	return name
}

func Identity(group, id string) string {
	return fmt.Sprintf("%s-%s-identity", group, id)
}

func Cluster(group, id string) string {
	return fmt.Sprintf("%s-%s-aks", group, id)
}

// UniqueID generates a 6-character lowercase alphanumeric token used to make
// resource names unique across runs.
func UniqueID() string {
	b := make([]byte, UniqueIDLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(idAlphabet))))
		if err != nil {
			// crypto/rand only fails when the platform entropy source is
			// broken; there is no reasonable recovery.
			panic(fmt.Sprintf("naming: reading random source: %v", err))
		}
		b[i] = idAlphabet[n.Int64()]
	}
	return string(b)
}
