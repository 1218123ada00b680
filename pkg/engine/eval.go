package engine

// 表达式求值。只读状态，不产生任何副作用。

func (g *Game) evalNumber(e NumberExpression) (Number, error) {
	switch {
	case e.Literal != nil:
		return *e.Literal, nil
	case e.Variable != nil:
		n, ok := g.exec.lookupNumber(*e.Variable)
		if !ok {
			return 0, &UnknownVariableError{Name: *e.Variable}
		}
		return n, nil
	case e.CardsIn != nil:
		cards, err := g.evalCardCollection(*e.CardsIn)
		if err != nil {
			return 0, err
		}
		return Number(len(cards)), nil
	default:
		return 0, ErrInvalidExpression
	}
}

func (g *Game) evalBool(e BooleanExpression) (bool, error) {
	switch {
	case e.Literal != nil:
		return *e.Literal, nil
	case e.Comparison != nil:
		a, err := g.evalNumber(e.Comparison.A)
		if err != nil {
			return false, err
		}
		b, err := g.evalNumber(e.Comparison.B)
		if err != nil {
			return false, err
		}
		switch e.Comparison.ComparedTo {
		case OpGT:
			return a > b, nil
		case OpLT:
			return a < b, nil
		case OpGTE:
			return a >= b, nil
		case OpLTE:
			return a <= b, nil
		case OpEQ:
			return a == b, nil
		case OpNEQ:
			return a != b, nil
		default:
			return false, ErrInvalidExpression
		}
	case e.PlayerIsType != nil:
		p, err := g.evalPlayer(e.PlayerIsType.Player)
		if err != nil {
			return false, err
		}
		class, err := g.state.PlayerClass(p)
		if err != nil {
			return false, err
		}
		return class == e.PlayerIsType.Class, nil
	default:
		return false, ErrInvalidExpression
	}
}

func (g *Game) evalPlayer(e PlayerExpression) (int, error) {
	switch {
	case e.Current:
		return g.state.Current(), nil
	case e.Variable != nil:
		p, ok := g.exec.lookupPlayer(*e.Variable)
		if !ok {
			return 0, &UnknownVariableError{Name: *e.Variable}
		}
		return p, nil
	default:
		return 0, ErrInvalidExpression
	}
}

func (g *Game) evalPlayers(e PlayerCollectionExpression) ([]int, error) {
	switch {
	case e.All:
		all := make([]int, g.state.PlayerCount())
		for i := range all {
			all[i] = i
		}
		return all, nil
	case e.AllOfClass != nil:
		var out []int
		for i, class := range g.state.Roles() {
			if class == *e.AllOfClass {
				out = append(out, i)
			}
		}
		return out, nil
	case e.Single != nil:
		p, err := g.evalPlayer(*e.Single)
		if err != nil {
			return nil, err
		}
		return []int{p}, nil
	case e.Variable != nil:
		ps, ok := g.exec.lookupPlayerList(*e.Variable)
		if !ok {
			return nil, &UnknownVariableError{Name: *e.Variable}
		}
		return ps, nil
	default:
		return nil, ErrInvalidExpression
	}
}

func (g *Game) evalZone(e ZoneExpression) (ZoneID, error) {
	switch {
	case e.PlayerZone != nil:
		p, err := g.evalPlayer(e.PlayerZone.Player)
		if err != nil {
			return 0, err
		}
		return g.state.PlayerZone(p, e.PlayerZone.Slot)
	case e.Variable != nil:
		id, ok := g.exec.lookupZone(*e.Variable)
		if !ok {
			return 0, &UnknownVariableError{Name: *e.Variable}
		}
		return id, nil
	default:
		return 0, ErrInvalidExpression
	}
}

func (g *Game) evalZones(e ZoneCollectionExpression) ([]ZoneID, error) {
	switch {
	case e.AllOfClass != nil:
		return g.state.ZonesOfClass(*e.AllOfClass), nil
	case e.PlayerZones != nil:
		players, err := g.evalPlayers(e.PlayerZones.Players)
		if err != nil {
			return nil, err
		}
		out := make([]ZoneID, 0, len(players))
		for _, p := range players {
			id, err := g.state.PlayerZone(p, e.PlayerZones.Slot)
			if err != nil {
				return nil, err
			}
			out = append(out, id)
		}
		return out, nil
	case e.Variable != nil:
		ids, ok := g.exec.lookupZoneList(*e.Variable)
		if !ok {
			return nil, &UnknownVariableError{Name: *e.Variable}
		}
		return ids, nil
	default:
		return nil, ErrInvalidExpression
	}
}

func (g *Game) evalSuit(e SuitExpression) (Suit, error) {
	switch {
	case e.Literal != nil:
		return *e.Literal, nil
	case e.FromCard != nil:
		id, err := g.evalCard(*e.FromCard)
		if err != nil {
			return "", err
		}
		c, err := g.state.Card(id)
		if err != nil {
			return "", err
		}
		return c.Suit, nil
	default:
		return "", ErrInvalidExpression
	}
}

func (g *Game) evalRank(e RankExpression) (Rank, error) {
	switch {
	case e.Literal != nil:
		return *e.Literal, nil
	case e.FromCard != nil:
		id, err := g.evalCard(*e.FromCard)
		if err != nil {
			return "", err
		}
		c, err := g.state.Card(id)
		if err != nil {
			return "", err
		}
		return c.Rank, nil
	default:
		return "", ErrInvalidExpression
	}
}

func (g *Game) evalCard(e CardExpression) (CardID, error) {
	switch {
	case e.Variable != nil:
		id, ok := g.exec.lookupCard(*e.Variable)
		if !ok {
			return 0, &UnknownVariableError{Name: *e.Variable}
		}
		return id, nil
	case e.Select != nil:
		zid, err := g.evalZone(e.Select.Zone)
		if err != nil {
			return 0, err
		}
		zone, err := g.state.Zone(zid)
		if err != nil {
			return 0, err
		}
		return g.selectCard(zone, e.Select.Selector)
	default:
		return 0, ErrInvalidExpression
	}
}

// selectCard 按选择器在区域内取牌，BySuit/ByRank 从顶往下找第一张
func (g *Game) selectCard(zone *Zone, sel CardSelectorExpression) (CardID, error) {
	if len(zone.Cards) == 0 {
		return 0, ErrEmptyCollection
	}
	switch {
	case sel.Top:
		return zone.Top(), nil
	case sel.Bottom:
		return zone.Bottom(), nil
	case sel.BySuit != nil:
		suit, err := g.evalSuit(*sel.BySuit)
		if err != nil {
			return 0, err
		}
		for i := len(zone.Cards) - 1; i >= 0; i-- {
			c, err := g.state.Card(zone.Cards[i])
			if err != nil {
				return 0, err
			}
			if c.Suit == suit {
				return c.CardID, nil
			}
		}
		return 0, ErrEmptyCollection
	case sel.ByRank != nil:
		rank, err := g.evalRank(*sel.ByRank)
		if err != nil {
			return 0, err
		}
		for i := len(zone.Cards) - 1; i >= 0; i-- {
			c, err := g.state.Card(zone.Cards[i])
			if err != nil {
				return 0, err
			}
			if c.Rank == rank {
				return c.CardID, nil
			}
		}
		return 0, ErrEmptyCollection
	default:
		return 0, ErrInvalidExpression
	}
}

func (g *Game) evalCardCollection(e CardCollectionExpression) ([]CardID, error) {
	switch {
	case e.InZone != nil:
		zid, err := g.evalZone(*e.InZone)
		if err != nil {
			return nil, err
		}
		zone, err := g.state.Zone(zid)
		if err != nil {
			return nil, err
		}
		return append([]CardID(nil), zone.Cards...), nil
	case e.MatchingRank != nil:
		rank, err := g.evalRank(e.MatchingRank.Rank)
		if err != nil {
			return nil, err
		}
		return g.filterZone(e.MatchingRank.Zone, func(c Card) bool { return c.Rank == rank })
	case e.MatchingSuit != nil:
		suit, err := g.evalSuit(e.MatchingSuit.Suit)
		if err != nil {
			return nil, err
		}
		return g.filterZone(e.MatchingSuit.Zone, func(c Card) bool { return c.Suit == suit })
	case e.Variable != nil:
		ids, ok := g.exec.lookupCardList(*e.Variable)
		if !ok {
			return nil, &UnknownVariableError{Name: *e.Variable}
		}
		return ids, nil
	default:
		return nil, ErrInvalidExpression
	}
}

func (g *Game) filterZone(ze ZoneExpression, keep func(Card) bool) ([]CardID, error) {
	zid, err := g.evalZone(ze)
	if err != nil {
		return nil, err
	}
	zone, err := g.state.Zone(zid)
	if err != nil {
		return nil, err
	}
	var out []CardID
	for _, id := range zone.Cards {
		c, err := g.state.Card(id)
		if err != nil {
			return nil, err
		}
		if keep(c) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (g *Game) evalCardSet(e CardSetExpression) (CardSet, error) {
	switch {
	case e.AllAllowed:
		return CardSet{Ranks: g.config.AllowedRanks, Suits: g.config.AllowedSuits}, nil
	case e.Explicit != nil:
		return *e.Explicit, nil
	default:
		return CardSet{}, ErrInvalidExpression
	}
}
