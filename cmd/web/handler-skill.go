package main

import (
	"net/http"

	"github.com/myrjola/skillplan/internal/skills"
)

type skillTemplateData struct {
	BaseTemplateData
	Skill        skills.Skill
	MuscleGroups []string
}

func (app *application) skillGET(w http.ResponseWriter, r *http.Request) {
	catalog := app.programService.Catalog()
	skill, ok := catalog.Lookup(r.PathValue("id"))
	if !ok {
		app.notFound(w, r)
		return
	}
	app.render(w, r, http.StatusOK, "skill", skillTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Skill:            skill,
		MuscleGroups:     catalog.MuscleGroups(skill.ID),
	})
}
