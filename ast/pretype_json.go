package ast

import (
	"encoding/json"
	"fmt"

	"github.com/hygge-lang/hygge/token"
)

type pretypeEnvelope struct {
	Kind   string                `json:"kind"`
	Pos    token.Position        `json:"pos"`
	Name   string                `json:"name,omitempty"`
	Args   []*pretypeEnvelope    `json:"args,omitempty"`
	Ret    *pretypeEnvelope      `json:"ret,omitempty"`
	Fields []pretypeFieldEnv     `json:"fields,omitempty"`
	Cases  []pretypeCaseEnv      `json:"cases,omitempty"`
	Elem   *pretypeEnvelope      `json:"elem,omitempty"`
}

type pretypeFieldEnv struct {
	Mutable bool             `json:"mutable"`
	Name    string           `json:"name"`
	Type    *pretypeEnvelope `json:"type"`
}

type pretypeCaseEnv struct {
	Label string           `json:"label"`
	Type  *pretypeEnvelope `json:"type"`
}

func marshalPretype(p Pretype) json.RawMessage {
	env := toPretypeEnvelope(p)
	data, err := json.Marshal(env)
	if err != nil {
		return nil
	}
	return data
}

func unmarshalPretype(data json.RawMessage) (Pretype, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var env pretypeEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return fromPretypeEnvelope(&env)
}

func toPretypeEnvelope(p Pretype) *pretypeEnvelope {
	if p == nil {
		return nil
	}
	switch t := p.(type) {
	case *PIdent:
		return &pretypeEnvelope{Kind: "ident", Pos: t.Token, Name: t.Name}
	case *PFun:
		args := make([]*pretypeEnvelope, len(t.Args))
		for i, a := range t.Args {
			args[i] = toPretypeEnvelope(a)
		}
		return &pretypeEnvelope{Kind: "fun", Pos: t.Token, Args: args, Ret: toPretypeEnvelope(t.Ret)}
	case *PRecord:
		fields := make([]pretypeFieldEnv, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = pretypeFieldEnv{Mutable: f.Mutable, Name: f.Name, Type: toPretypeEnvelope(f.Type)}
		}
		return &pretypeEnvelope{Kind: "record", Pos: t.Token, Fields: fields}
	case *PUnion:
		cases := make([]pretypeCaseEnv, len(t.Cases))
		for i, c := range t.Cases {
			cases[i] = pretypeCaseEnv{Label: c.Label, Type: toPretypeEnvelope(c.Type)}
		}
		return &pretypeEnvelope{Kind: "union", Pos: t.Token, Cases: cases}
	case *PArray:
		return &pretypeEnvelope{Kind: "array", Pos: t.Token, Elem: toPretypeEnvelope(t.Elem)}
	default:
		return &pretypeEnvelope{Kind: "unknown"}
	}
}

func fromPretypeEnvelope(e *pretypeEnvelope) (Pretype, error) {
	if e == nil {
		return nil, nil
	}
	switch e.Kind {
	case "ident":
		return &PIdent{Token: e.Pos, Name: e.Name}, nil
	case "fun":
		args := make([]Pretype, len(e.Args))
		for i, a := range e.Args {
			p, err := fromPretypeEnvelope(a)
			if err != nil {
				return nil, err
			}
			args[i] = p
		}
		ret, err := fromPretypeEnvelope(e.Ret)
		if err != nil {
			return nil, err
		}
		return &PFun{Token: e.Pos, Args: args, Ret: ret}, nil
	case "record":
		fields := make([]PRecordField, len(e.Fields))
		for i, f := range e.Fields {
			t, err := fromPretypeEnvelope(f.Type)
			if err != nil {
				return nil, err
			}
			fields[i] = PRecordField{Mutable: f.Mutable, Name: f.Name, Type: t}
		}
		return &PRecord{Token: e.Pos, Fields: fields}, nil
	case "union":
		cases := make([]PUnionCase, len(e.Cases))
		for i, c := range e.Cases {
			t, err := fromPretypeEnvelope(c.Type)
			if err != nil {
				return nil, err
			}
			cases[i] = PUnionCase{Label: c.Label, Type: t}
		}
		return &PUnion{Token: e.Pos, Cases: cases}, nil
	case "array":
		elem, err := fromPretypeEnvelope(e.Elem)
		if err != nil {
			return nil, err
		}
		return &PArray{Token: e.Pos, Elem: elem}, nil
	default:
		return nil, fmt.Errorf("ast: unknown pretype kind %q", e.Kind)
	}
}
