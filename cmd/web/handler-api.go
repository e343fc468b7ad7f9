package main

import (
	"encoding/json"
	"net/http"

	"github.com/myrjola/skillplan/internal/errors"
	"github.com/myrjola/skillplan/internal/program"
	"github.com/myrjola/skillplan/internal/skills"
)

const maxRequestBodyBytes = 64 << 10

type apiSkill struct {
	skills.Skill
	MuscleGroups []string `json:"muscleGroups"`
}

type apiSkillsResponse struct {
	Skills []apiSkill `json:"skills"`
}

type apiCreateProgramRequest struct {
	Skills      []program.SelectedSkill `json:"skills"`
	DaysPerWeek int                     `json:"daysPerWeek"`
}

func (app *application) apiSkillsGET(w http.ResponseWriter, r *http.Request) {
	catalog := app.programService.Catalog()
	catalogSkills := catalog.Skills()
	resp := apiSkillsResponse{Skills: make([]apiSkill, 0, len(catalogSkills))}
	for _, s := range catalogSkills {
		groups := catalog.MuscleGroups(s.ID)
		if groups == nil {
			groups = []string{}
		}
		resp.Skills = append(resp.Skills, apiSkill{Skill: s, MuscleGroups: groups})
	}
	app.writeJSON(w, r, http.StatusOK, resp)
}

func (app *application) apiProgramsPOST(w http.ResponseWriter, r *http.Request) {
	var req apiCreateProgramRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		app.errorJSON(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	p, err := app.programService.CreateProgram(r.Context(), req.Skills, req.DaysPerWeek)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			app.errorJSON(w, r, http.StatusUnprocessableEntity, msg)
			return
		}
		app.serverError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/programs/"+p.ID.String())
	app.writeJSON(w, r, http.StatusCreated, p)
}

func (app *application) apiProgramGET(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProgramIDParam(r)
	if !ok {
		app.errorJSON(w, r, http.StatusNotFound, "program not found")
		return
	}
	p, err := app.programService.GetProgram(r.Context(), id)
	if errors.Is(err, program.ErrNotFound) {
		app.errorJSON(w, r, http.StatusNotFound, "program not found")
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, p)
}
