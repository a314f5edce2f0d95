package handlers

import (
	"net/http"

	"promptagent/internal/domain"
	"promptagent/internal/gateway"
)

type generateRequest struct {
	TemplateID string `json:"template_id"`
	Input      string `json:"input"`
	Tone       string `json:"tone"`
}

// generateResponse reports usage as null for Pro sessions.
type generateResponse struct {
	Result string                `json:"result"`
	Usage  *domain.UsageSnapshot `json:"usage"`
}

type resultResponse struct {
	Result string               `json:"result"`
	Usage  domain.UsageSnapshot `json:"usage"`
}

type regenerateRequest struct {
	Tweak      string `json:"tweak"`
	LastOutput string `json:"last_output"`
}

type regenerateResponse struct {
	Output string               `json:"output"`
	Usage  domain.UsageSnapshot `json:"usage"`
}

type captionRequest struct {
	Platform string `json:"platform"`
	Caption  string `json:"caption"`
}

type clientReplyRequest struct {
	Message string `json:"message"`
	Tone    string `json:"tone"`
}

type tweakRequest struct {
	Output string `json:"output"`
}

type tweakResponse struct {
	Suggestions []string `json:"suggestions"`
}

func (a *App) run(w http.ResponseWriter, r *http.Request, key domain.FeatureKey, in gateway.Input) (gateway.Result, bool) {
	res, err := a.Pipeline.Run(r.Context(), a.sessionID(r), key, in)
	if err != nil {
		a.writeRunError(w, r, err)
		return gateway.Result{}, false
	}
	return res, true
}

func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !a.decode(w, r, &req) {
		return
	}
	res, ok := a.run(w, r, domain.FeatureGenerate, gateway.Input{TemplateID: req.TemplateID, Text: req.Input, Tone: req.Tone})
	if !ok {
		return
	}
	out := generateResponse{Result: res.Text}
	if !res.Usage.Unlimited {
		usage := res.Usage
		out.Usage = &usage
	}
	a.json(w, http.StatusOK, out)
}

func (a *App) Regenerate(w http.ResponseWriter, r *http.Request) {
	var req regenerateRequest
	if !a.decode(w, r, &req) {
		return
	}
	res, ok := a.run(w, r, domain.FeatureRegenerate, gateway.Input{Tweak: req.Tweak, LastOutput: req.LastOutput})
	if !ok {
		return
	}
	a.json(w, http.StatusOK, regenerateResponse{Output: res.Text, Usage: res.Usage})
}

func (a *App) DailyPost(w http.ResponseWriter, r *http.Request) {
	a.simple(w, r, domain.FeatureDailyPost, gateway.Input{})
}

func (a *App) RandomCaption(w http.ResponseWriter, r *http.Request) {
	var req captionRequest
	if !a.decode(w, r, &req) {
		return
	}
	a.simple(w, r, domain.FeatureRandomCaption, gateway.Input{Platform: req.Platform})
}

func (a *App) RewriteCaption(w http.ResponseWriter, r *http.Request) {
	var req captionRequest
	if !a.decode(w, r, &req) {
		return
	}
	a.simple(w, r, domain.FeatureRewriteCaption, gateway.Input{Caption: req.Caption, Platform: req.Platform})
}

func (a *App) WeeklyPlan(w http.ResponseWriter, r *http.Request) {
	a.simple(w, r, domain.FeatureWeeklyPlan, gateway.Input{})
}

func (a *App) ClientReply(w http.ResponseWriter, r *http.Request) {
	var req clientReplyRequest
	if !a.decode(w, r, &req) {
		return
	}
	a.simple(w, r, domain.FeatureClientReply, gateway.Input{Message: req.Message, Tone: req.Tone})
}

func (a *App) TweakHelper(w http.ResponseWriter, r *http.Request) {
	var req tweakRequest
	if !a.decode(w, r, &req) {
		return
	}
	res, ok := a.run(w, r, domain.FeatureTweakHelper, gateway.Input{Text: req.Output})
	if !ok {
		return
	}
	suggestions := res.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	a.json(w, http.StatusOK, tweakResponse{Suggestions: suggestions})
}

func (a *App) simple(w http.ResponseWriter, r *http.Request, key domain.FeatureKey, in gateway.Input) {
	res, ok := a.run(w, r, key, in)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, resultResponse{Result: res.Text, Usage: res.Usage})
}
