//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package share

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/rss3p/mpcsql/errs"
	"github.com/rss3p/mpcsql/p2p"
	"github.com/rss3p/mpcsql/rss"
	"github.com/rss3p/mpcsql/schema"
)

// SendTableShares is the client half of spec.md §6's share-delivery
// RPC: it ships owner's bundle for one party over conn and waits for
// the accept/reject response. bundle.PartyID tells the node which
// party it is receiving; submittedAt is the idempotency timestamp.
func SendTableShares(conn *p2p.Conn, owner Owner, bundle *Bundle, submittedAt time.Time) (accepted bool, storagePath string, err error) {
	if err = sendRequest(conn, owner, bundle, submittedAt); err != nil {
		return false, "", fmt.Errorf("share: send request: %w", err)
	}
	return receiveResponse(conn)
}

func sendRequest(conn *p2p.Conn, owner Owner, bundle *Bundle, submittedAt time.Time) error {
	if err := conn.SendString(owner.OwnerID); err != nil {
		return err
	}
	if err := conn.SendString(owner.OwnerName); err != nil {
		return err
	}
	if err := sendSchema(conn, bundle.Schema); err != nil {
		return err
	}
	if err := conn.SendUint32(bundle.PartyID); err != nil {
		return err
	}
	if err := sendUint64(conn, uint64(submittedAt.UnixNano())); err != nil {
		return err
	}
	for r := range bundle.Cells {
		ownBits, rightBits := bundleRowBits(bundle, r)
		if err := conn.SendData(packBits(ownBits)); err != nil {
			return err
		}
		if err := conn.SendData(packBits(rightBits)); err != nil {
			return err
		}
	}
	return conn.Flush()
}

func sendSchema(conn *p2p.Conn, s schema.Schema) error {
	if err := conn.SendString(s.TableName); err != nil {
		return err
	}
	if err := sendUint64(conn, s.TableID); err != nil {
		return err
	}
	if err := conn.SendUint32(s.RowCount); err != nil {
		return err
	}
	if err := conn.SendUint32(len(s.Columns)); err != nil {
		return err
	}
	for _, c := range s.Columns {
		if err := conn.SendString(c.Name); err != nil {
			return err
		}
		if err := conn.SendByte(byte(c.Type.Type)); err != nil {
			return err
		}
		if err := conn.SendUint32(c.Type.Bits); err != nil {
			return err
		}
		if err := conn.SendUint32(c.Type.MaxChars); err != nil {
			return err
		}
		if err := conn.SendByte(byte(c.Type.Charset)); err != nil {
			return err
		}
	}
	return nil
}

func receiveSchema(conn *p2p.Conn) (schema.Schema, error) {
	var s schema.Schema
	var err error
	if s.TableName, err = conn.ReceiveString(); err != nil {
		return s, err
	}
	if s.TableID, err = receiveUint64(conn); err != nil {
		return s, err
	}
	if s.RowCount, err = conn.ReceiveUint32(); err != nil {
		return s, err
	}
	numCols, err := conn.ReceiveUint32()
	if err != nil {
		return s, err
	}
	s.Columns = make([]schema.Column, numCols)
	for i := range s.Columns {
		name, err := conn.ReceiveString()
		if err != nil {
			return s, err
		}
		typ, err := conn.ReceiveByte()
		if err != nil {
			return s, err
		}
		bits, err := conn.ReceiveUint32()
		if err != nil {
			return s, err
		}
		maxChars, err := conn.ReceiveUint32()
		if err != nil {
			return s, err
		}
		charset, err := conn.ReceiveByte()
		if err != nil {
			return s, err
		}
		s.Columns[i] = schema.Column{
			Name: name,
			Type: schema.TypeHint{
				Type:     schema.Type(typ),
				Bits:     bits,
				MaxChars: maxChars,
				Charset:  schema.Charset(charset),
			},
		}
	}
	return s, nil
}

// ServeSendTableShares is the server half: it reads one request off
// conn, validates and stores it in store, and writes the response.
// The caller runs it once per accepted connection/request.
func ServeSendTableShares(conn *p2p.Conn, store *Store) error {
	ownerID, err := conn.ReceiveString()
	if err != nil {
		return err
	}
	_, err = conn.ReceiveString() // owner name, not used for storage.
	if err != nil {
		return err
	}
	s, err := receiveSchema(conn)
	if err != nil {
		return err
	}
	partyID, err := conn.ReceiveUint32()
	if err != nil {
		return err
	}
	submittedAtNs, err := receiveUint64(conn)
	if err != nil {
		return err
	}

	if partyID > 2 {
		return respondFailure(conn, errs.ErrInvalidPartyID,
			fmt.Sprintf("party id %d out of range", partyID))
	}

	bundle := &Bundle{PartyID: partyID, Schema: s, Cells: make([][]rss.Word, s.RowCount)}
	rowBits := s.RowBits()
	for r := 0; r < s.RowCount; r++ {
		ownPacked, err := conn.ReceiveData()
		if err != nil {
			return err
		}
		rightPacked, err := conn.ReceiveData()
		if err != nil {
			return err
		}
		if len(ownPacked)*8 < rowBits || len(rightPacked)*8 < rowBits {
			return respondFailure(conn, errs.ErrSchemaMismatch,
				fmt.Sprintf("row %d: bitstring too short for schema row width %d", r, rowBits))
		}
		bundle.Cells[r] = rowToColumns(s, unpackBits(ownPacked, rowBits), unpackBits(rightPacked, rowBits))
	}

	if err := store.Put(ownerID, s.TableID, int64(submittedAtNs), bundle); err != nil {
		return respondFailure(conn, errs.ErrDuplicateSubmission, err.Error())
	}

	return respondAccepted(conn, fmt.Sprintf("memory://%s/%d", s.TableName, s.TableID))
}

func respondAccepted(conn *p2p.Conn, storagePath string) error {
	if err := conn.SendByte(1); err != nil {
		return err
	}
	if err := conn.SendString(storagePath); err != nil {
		return err
	}
	return conn.Flush()
}

func respondFailure(conn *p2p.Conn, kind error, message string) error {
	if err := conn.SendByte(0); err != nil {
		return err
	}
	if err := conn.SendString(kind.Error()); err != nil {
		return err
	}
	if err := conn.SendString(message); err != nil {
		return err
	}
	return conn.Flush()
}

func receiveResponse(conn *p2p.Conn) (accepted bool, storagePath string, err error) {
	ok, err := conn.ReceiveByte()
	if err != nil {
		return false, "", err
	}
	if ok == 1 {
		path, err := conn.ReceiveString()
		if err != nil {
			return false, "", err
		}
		return true, path, nil
	}
	kind, err := conn.ReceiveString()
	if err != nil {
		return false, "", err
	}
	message, err := conn.ReceiveString()
	if err != nil {
		return false, "", err
	}
	return false, "", fmt.Errorf("share: %s: %s", kind, message)
}

// bundleRowBits flattens row r of bundle into its own/right bit
// sequences, column-major, LSB first, matching FlattenRow's order.
func bundleRowBits(bundle *Bundle, r int) (own, right []bool) {
	for _, word := range bundle.Cells[r] {
		for _, pair := range word {
			own = append(own, pair.Own)
			right = append(right, pair.Right)
		}
	}
	return own, right
}

// rowToColumns splits one row's flattened own/right bits back into
// per-column Words using s's column widths.
func rowToColumns(s schema.Schema, own, right []bool) []rss.Word {
	cols := make([]rss.Word, len(s.Columns))
	offset := 0
	for c, col := range s.Columns {
		width := col.Type.BitWidth()
		word := make(rss.Word, width)
		for k := 0; k < width; k++ {
			word[k] = rss.Pair{Own: own[offset+k], Right: right[offset+k]}
		}
		cols[c] = word
		offset += width
	}
	return cols
}

func packBits(bits []bool) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

func unpackBits(data []byte, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = data[i/8]&(1<<uint(i%8)) != 0
	}
	return out
}

func sendUint64(conn *p2p.Conn, v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return conn.SendData(buf[:])
}

func receiveUint64(conn *p2p.Conn) (uint64, error) {
	data, err := conn.ReceiveData()
	if err != nil {
		return 0, err
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("share: malformed uint64 (%d bytes)", len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}
