package board

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseFEN builds a Position from the six standard FEN fields. The
// halfmove clock and full-move number may be omitted. On error the
// returned position is nil.
func ParseFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return nil, fmt.Errorf("fen %q: need at least 4 fields, got %d", fen, len(fields))
	}

	p := &Position{
		zobrist:  defaultZobrist,
		fullmove: 1,
	}
	p.hist.epFile[0] = NoEnPassant

	if err := p.parsePlacement(fields[0]); err != nil {
		return nil, fmt.Errorf("fen %q: %w", fen, err)
	}

	switch fields[1] {
	case "w":
		p.stm = White
	case "b":
		p.stm = Black
	default:
		return nil, fmt.Errorf("fen %q: invalid side to move %q", fen, fields[1])
	}

	rights, err := parseCastlingField(fields[2])
	if err != nil {
		return nil, fmt.Errorf("fen %q: %w", fen, err)
	}
	p.hist.castling[0] = rights

	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return nil, fmt.Errorf("fen %q: invalid en passant target %q", fen, fields[3])
		}
		p.hist.epFile[0] = uint8(sq.File())
	}

	if len(fields) > 4 {
		hm, err := strconv.Atoi(fields[4])
		if err != nil || hm < 0 {
			return nil, fmt.Errorf("fen %q: invalid halfmove clock %q", fen, fields[4])
		}
		p.hist.halfmoves[0] = uint16(hm)
	}
	if len(fields) > 5 {
		fm, err := strconv.Atoi(fields[5])
		if err != nil || fm < 1 {
			return nil, fmt.Errorf("fen %q: invalid move number %q", fen, fields[5])
		}
		p.fullmove = fm
	}

	if p.pieces[White][King].Count() != 1 || p.pieces[Black][King].Count() != 1 {
		return nil, fmt.Errorf("fen %q: each side needs exactly one king", fen)
	}

	p.all = p.occupied[White] | p.occupied[Black]
	p.key = p.hash()
	p.hist.keys[0] = p.key
	return p, nil
}

func (p *Position) parsePlacement(placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("placement needs 8 ranks, got %d", len(ranks))
	}
	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(rankStr); j++ {
			ch := rankStr[j]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			kind, color, ok := kindFromFEN(ch)
			if !ok {
				return fmt.Errorf("invalid piece %q", ch)
			}
			if file > 7 {
				return fmt.Errorf("rank %d overflows", rank+1)
			}
			sq := SquareAt(file, rank)
			p.pieces[color][kind] |= Bit(sq)
			p.occupied[color] |= Bit(sq)
			file++
		}
		if file != 8 {
			return fmt.Errorf("rank %d has %d squares", rank+1, file)
		}
	}
	return nil
}

func parseCastlingField(s string) (uint8, error) {
	if s == "-" {
		return 0, nil
	}
	var rights uint8
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'K':
			rights |= CastleWhiteKingside
		case 'Q':
			rights |= CastleWhiteQueenside
		case 'k':
			rights |= CastleBlackKingside
		case 'q':
			rights |= CastleBlackQueenside
		default:
			return 0, fmt.Errorf("invalid castling field %q", s)
		}
	}
	return rights, nil
}

func castlingString(rights uint8) string {
	if rights == 0 {
		return "-"
	}
	var sb strings.Builder
	if rights&CastleWhiteKingside != 0 {
		sb.WriteByte('K')
	}
	if rights&CastleWhiteQueenside != 0 {
		sb.WriteByte('Q')
	}
	if rights&CastleBlackKingside != 0 {
		sb.WriteByte('k')
	}
	if rights&CastleBlackQueenside != 0 {
		sb.WriteByte('q')
	}
	return sb.String()
}

// FEN formats the position as the six standard fields.
func (p *Position) FEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			sq := SquareAt(file, rank)
			k := p.KindAt(sq)
			if k == NoKind {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteByte(k.fenChar(p.colorAt(sq)))
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.stm == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	sb.WriteByte(' ')
	sb.WriteString(castlingString(p.CastlingRights()))
	sb.WriteByte(' ')
	if file := p.EnPassantFile(); file == NoEnPassant {
		sb.WriteByte('-')
	} else if p.stm == White {
		sb.WriteString(SquareAt(int(file), 5).String())
	} else {
		sb.WriteString(SquareAt(int(file), 2).String())
	}
	fmt.Fprintf(&sb, " %d %d", p.HalfMoveClock(), p.fullmove)
	return sb.String()
}
