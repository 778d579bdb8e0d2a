// Package testutil provides deterministic identifiers, golden-file
// assertions and document fixtures shared by package tests.
package testutil

import (
	"github.com/roach88/docmig/internal/doc"
	"github.com/roach88/docmig/internal/model"
)

// Sample is a small well-formed document together with handles on its
// entities.
type Sample struct {
	Domain *doc.Domain

	Motor     *doc.Definition // shared, ports shaft and power
	Pump      *doc.Definition // shared, Base is Motor
	Main      *doc.Composition
	Drive     *doc.Part // shared type Motor, port "a"
	Feeder    *doc.Part // local type LocalPump
	LocalPump *doc.Definition
	Link      *doc.Connector // Drive.a -> LocalPump.x
}

// NewSample builds the sample document at revision 0. Entity n is
// assigned ID(n) in construction order.
//
//	Domain "plant"
//	  Definitions[0] Motor (1): Ports shaft (2), power (3)
//	  Definitions[1] Pump (4): Base Motor, Ports inlet (5)
//	  Compositions["main"] Main (6)
//	    Parts[0] Drive (7): shared Motor, Ports["a"] (8)
//	    Parts[1] Feeder (9): local LocalPump (10), Ports x (11)
//	    Connectors[0] Link (12): Drive.a -> LocalPump.x
func NewSample() *Sample {
	d := doc.NewDomain("plant")

	motor := d.AddDefinition(&doc.Definition{ID: ID(1), Name: "Motor"})
	motor.AddPort(&doc.Port{ID: ID(2), Name: "shaft", Direction: "out"})
	motor.AddPort(&doc.Port{ID: ID(3), Name: "power", Direction: "in"})

	pump := d.AddDefinition(&doc.Definition{ID: ID(4), Name: "Pump", Base: motor})
	pump.AddPort(&doc.Port{ID: ID(5), Name: "inlet", Direction: "in"})

	comp := d.AddComposition("main", &doc.Composition{ID: ID(6), Name: "Main"})

	drive := comp.AddPart(&doc.Part{ID: ID(7), Name: "Drive", Multiplicity: "1"})
	drive.SetSharedType(motor)
	a := drive.AddPort("a", &doc.Port{ID: ID(8), Name: "a", Direction: "out"})

	feeder := comp.AddPart(&doc.Part{ID: ID(9), Name: "Feeder", Multiplicity: "0..*"})
	local := &doc.Definition{ID: ID(10), Name: "LocalPump"}
	x := local.AddPort(&doc.Port{ID: ID(11), Name: "x", Direction: "in"})
	feeder.SetLocalType(local)

	link := comp.AddConnector(&doc.Connector{ID: ID(12), Name: "Link", Source: a, Target: x})

	return &Sample{
		Domain:    d,
		Motor:     motor,
		Pump:      pump,
		Main:      comp,
		Drive:     drive,
		Feeder:    feeder,
		LocalPump: local,
		Link:      link,
	}
}

// Legacy is a revision-0 document carrying one instance of every defect
// the default catalogue repairs.
type Legacy struct {
	*Sample

	// StalePort is a detached copy of LocalPump's port x that Link.Target
	// still points at. It shares x's GlobalID.
	StalePort *doc.Port
}

// NewLegacy builds the sample document and corrupts it:
//
//   - Motor is named " Motor " and Pump "Café Pump" (decomposed)
//   - Drive has an empty multiplicity, Feeder the legacy "n"
//   - Link.Target points at StalePort instead of x
//   - Drive.Ports["a"] records Feeder as its owner
//   - Feeder carries Drive's GlobalID
func NewLegacy() *Legacy {
	s := NewSample()

	s.Motor.Name = " Motor "
	s.Pump.Name = "Cafe\u0301 Pump"

	s.Drive.Multiplicity = ""
	s.Feeder.Multiplicity = "n"

	stale := &doc.Port{ID: ID(11), Name: "x", Direction: "in"}
	s.Link.Target = stale

	s.Drive.Ports["a"] = model.Ownership{Owner: s.Feeder, Target: s.Drive.Port("a")}

	s.Feeder.ID = s.Drive.ID

	return &Legacy{Sample: s, StalePort: stale}
}
