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

// Package chain implements the chain_* JSON-RPC namespace: read access to
// blocks, transactions and balances, plus signed-transaction submission.
// Method marshalling itself is handled by github.com/ethereum/go-ethereum/rpc;
// this package only supplies the namespace's Go methods and the collaborator
// interfaces they're built on.
package chain

import (
	"context"
	"fmt"

	"github.com/ccnode/ccnode/core/types"
)

// Client answers read queries about chain state: blocks, transactions,
// account balances.
type Client interface {
	BlockByNumber(ctx context.Context, number types.BlockNumber) (*types.Header, error)
	TransactionByHash(ctx context.Context, hash types.Hash) (*types.Transaction, error)
	BalanceOf(ctx context.Context, addr types.Address) (uint64, error)
}

// Miner is a stub collaborator for whatever local block-production
// component exists; the RPC surface only needs to know whether mining is
// currently enabled.
type Miner interface {
	IsMining() bool
}

// NetworkControl exposes the subset of P2P controls the RPC surface
// needs, e.g. for a future chain_peerCount method.
type NetworkControl interface {
	PeerCount() int
}

// AccountProvider resolves a signed transaction's sender for submission
// bookkeeping (nonce checks, etc.) without this package needing to know
// how accounts are unlocked or managed.
type AccountProvider interface {
	VerifySignature(tx types.Transaction) (types.Address, error)
}

// BlockSyncSender is the outbound edge to the block-sync subsystem: a
// freshly submitted transaction is handed off for propagation rather than
// broadcast directly from the RPC handler.
type BlockSyncSender interface {
	SubmitTransaction(tx types.Transaction) error
}

// Dependencies collects every collaborator the chain_* namespace needs,
// matching spec.md §6's named dependency list exactly.
type Dependencies struct {
	Client          Client
	Miner           Miner
	NetworkControl  NetworkControl
	AccountProvider AccountProvider
	BlockSyncSender BlockSyncSender
}

// Service implements the chain_* JSON-RPC namespace. Each exported method
// is registered by github.com/ethereum/go-ethereum/rpc under the "chain"
// namespace with its name lowercased (GetBlockByNumber -> chain_getBlockByNumber).
type Service struct {
	deps Dependencies
}

// NewService returns a Service backed by deps.
func NewService(deps Dependencies) *Service {
	return &Service{deps: deps}
}

// GetBlockByNumber implements chain_getBlockByNumber.
func (s *Service) GetBlockByNumber(ctx context.Context, number types.BlockNumber) (*types.Header, error) {
	header, err := s.deps.Client.BlockByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("chain_getBlockByNumber: %w", err)
	}
	return header, nil
}

// GetTransaction implements chain_getTransaction.
func (s *Service) GetTransaction(ctx context.Context, hash types.Hash) (*types.Transaction, error) {
	tx, err := s.deps.Client.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("chain_getTransaction: %w", err)
	}
	return tx, nil
}

// GetBalance implements chain_getBalance.
func (s *Service) GetBalance(ctx context.Context, addr types.Address) (uint64, error) {
	balance, err := s.deps.Client.BalanceOf(ctx, addr)
	if err != nil {
		return 0, fmt.Errorf("chain_getBalance: %w", err)
	}
	return balance, nil
}

// SendSignedTransaction implements chain_sendSignedTransaction: it
// recovers the sender from the transaction's signature and hands the
// transaction to the block-sync subsystem for propagation.
func (s *Service) SendSignedTransaction(ctx context.Context, tx types.Transaction) (types.Address, error) {
	sender, err := s.deps.AccountProvider.VerifySignature(tx)
	if err != nil {
		return types.Address{}, fmt.Errorf("chain_sendSignedTransaction: invalid signature: %w", err)
	}
	if err := s.deps.BlockSyncSender.SubmitTransaction(tx); err != nil {
		return types.Address{}, fmt.Errorf("chain_sendSignedTransaction: %w", err)
	}
	return sender, nil
}
