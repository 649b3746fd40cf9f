// Package contextbuilder merges static context files, dynamic context
// artifacts, and industry/persona reference records into the variable map
// consumed by the prompt compiler.
package contextbuilder

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/content-pipeline-api/internal/records"
)

// Fallbacks used when an item references no industry or persona.
const (
	DefaultIndustryName = "General"
	DefaultPersonaName  = "General audience"
)

// Assembler builds prompt variable maps. Merge precedence, later overrides
// earlier: static blocks, active context artifacts keyed by type, then
// industry/persona fields under fixed variable names.
type Assembler struct {
	store  records.ContentStore
	static *StaticLoader
	log    zerolog.Logger
}

// NewAssembler creates an Assembler.
func NewAssembler(store records.ContentStore, static *StaticLoader, log zerolog.Logger) *Assembler {
	return &Assembler{
		store:  store,
		static: static,
		log:    log.With().Str("component", "contextbuilder").Logger(),
	}
}

// Assemble builds the variable map for one stage run. industryID and
// personaID may be empty, in which case the fixed fallbacks apply.
func (a *Assembler) Assemble(ctx context.Context, contentType, industryID, personaID string) (map[string]string, error) {
	vars, err := a.static.LoadAll()
	if err != nil {
		return nil, err
	}

	artifacts, err := a.store.ListActiveArtifacts(ctx)
	if err != nil {
		return nil, err
	}
	for _, artifact := range artifacts {
		if artifact.TypeKey == "" {
			a.log.Warn().Str("artifact", artifact.Name).Msg("Skipping artifact without type key")
			continue
		}
		vars[artifact.TypeKey] = artifact.Content
	}

	vars["contentType"] = contentType
	vars["industryName"] = DefaultIndustryName
	vars["industryDescription"] = ""
	vars["industryPainPoints"] = ""
	vars["personaName"] = DefaultPersonaName
	vars["personaGoals"] = ""
	vars["personaObjections"] = ""

	if industryID != "" {
		industry, err := a.store.GetIndustry(ctx, industryID)
		if err != nil {
			return nil, err
		}
		vars["industryName"] = industry.Name
		vars["industryDescription"] = industry.Description
		vars["industryPainPoints"] = industry.PainPoints
	}

	if personaID != "" {
		persona, err := a.store.GetPersona(ctx, personaID)
		if err != nil {
			return nil, err
		}
		vars["personaName"] = persona.Name
		vars["personaGoals"] = persona.Goals
		vars["personaObjections"] = persona.Objections
	}

	return vars, nil
}

// Invalidate clears the static block cache. Development use only; the cache
// is otherwise never invalidated.
func (a *Assembler) Invalidate() {
	a.static.Invalidate()
}
