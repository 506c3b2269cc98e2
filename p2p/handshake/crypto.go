// Copyright 2024 The Erigon Authors
// (modifications)
// This file is part of ccnode.
//
// ccnode is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ccnode is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with ccnode. If not, see <http://www.gnu.org/licenses/>.

package handshake

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/rlp"
)

// encryptNonce RLP-encodes nonce and seals it under the session's shared
// secret with AES-256-GCM, the one deliberate standard-library crypto
// choice in this node (see DESIGN.md): a random nonce is prepended to the
// ciphertext so decryptNonce can recover it.
func encryptNonce(session *Session, nonce Nonce) ([]byte, error) {
	plain, err := rlp.EncodeToBytes(uint64(nonce))
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(session.SharedSecret[:])
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	iv := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, err
	}
	sealed := gcm.Seal(nil, iv, plain, nil)
	return append(iv, sealed...), nil
}

// decryptNonce reverses encryptNonce.
func decryptNonce(session *Session, encrypted []byte) (Nonce, error) {
	block, err := aes.NewCipher(session.SharedSecret[:])
	if err != nil {
		return 0, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return 0, err
	}
	if len(encrypted) < gcm.NonceSize() {
		return 0, fmt.Errorf("handshake: encrypted nonce too short")
	}
	iv, ciphertext := encrypted[:gcm.NonceSize()], encrypted[gcm.NonceSize():]
	plain, err := gcm.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return 0, err
	}
	var v uint64
	if err := rlp.DecodeBytes(plain, &v); err != nil {
		return 0, err
	}
	return Nonce(v), nil
}

// randomNonce returns a fresh cryptographically random Nonce, replacing
// the original's fixed placeholder value.
func randomNonce() (Nonce, error) {
	var buf [8]byte
	if _, err := io.ReadFull(rand.Reader, buf[:]); err != nil {
		return 0, err
	}
	return Nonce(binary.BigEndian.Uint64(buf[:])), nil
}
