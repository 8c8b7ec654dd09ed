package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"recipe-remix/internal/core/recipe"
	"recipe-remix/internal/core/storage"
	"recipe-remix/internal/pkg/common"

	"go.uber.org/zap"
)

// State 會話所在畫面狀態
type State string

const (
	StateUpload              State = "upload"
	StateIngredients         State = "ingredients"
	StateRecipes             State = "recipes"
	StateCookingInstructions State = "cooking_instructions"
	StateSubstitutions       State = "substitutions"
	StateSavedRecipes        State = "saved_recipes"
)

// Operation AI 操作類別，每類各自維護單飛守衛與序號
type Operation string

const (
	OpDetect     Operation = "detect"
	OpGenerate   Operation = "generate"
	OpSubstitute Operation = "substitute"
	OpChat       Operation = "chat"
)

// IngredientDetector 圖片食材辨識協作方
type IngredientDetector interface {
	DetectIngredients(ctx context.Context, imageData string) ([]recipe.Ingredient, error)
}

// RecipeGenerator 食譜生成協作方
type RecipeGenerator interface {
	GenerateCuisines(ctx context.Context, ingredients []recipe.Ingredient) ([]recipe.CuisineGroup, error)
}

// SubstitutionGenerator 替換建議協作方
type SubstitutionGenerator interface {
	GenerateSubstitutions(ctx context.Context, rec recipe.Recipe, available []recipe.Ingredient) ([]recipe.Substitution, error)
}

// RecipeChatter 食譜對話協作方
type RecipeChatter interface {
	Send(ctx context.Context, messages []recipe.ChatMessage, rec recipe.Recipe, available []recipe.Ingredient) (*recipe.ChatReply, error)
}

// Collaborators 會話依賴的外部協作方集合
type Collaborators struct {
	Detector    IngredientDetector
	Generator   RecipeGenerator
	Substituter SubstitutionGenerator
	Chatter     RecipeChatter
	Store       storage.Gateway
}

// Session 單一使用者的會話狀態機
// 會話可能被多個連線共用，所有轉移都在會話鎖內進行；
// AI 呼叫在鎖外執行，完成時以序號判斷是否仍為最新請求。
// 載入中不離開前一個穩定狀態，成功才前進，失敗即原地重試
type Session struct {
	ID string

	mu          sync.Mutex
	state       State
	prevState   State // SavedRecipes 分支的返回點
	ingredients *recipe.IngredientSet
	catalog     *recipe.Catalog
	selected    *recipe.Recipe
	subs        []recipe.Substitution
	perfect     bool
	chatLog     []recipe.ChatMessage
	pending     *recipe.Patch
	inflight    map[Operation]bool
	seq         map[Operation]uint64
	lastActive  time.Time

	collab  Collaborators
	maxChat int
}

// NewSession 創建新會話
func NewSession(id string, collab Collaborators, maxChat int) *Session {
	if maxChat <= 0 {
		maxChat = 40
	}
	return &Session{
		ID:          id,
		state:       StateUpload,
		ingredients: recipe.NewIngredientSet(),
		catalog:     recipe.NewCatalog(),
		inflight:    make(map[Operation]bool),
		seq:         make(map[Operation]uint64),
		lastActive:  time.Now(),
		collab:      collab,
		maxChat:     maxChat,
	}
}

// Snapshot 會話狀態快照，供查詢端點使用
type Snapshot struct {
	ID            string                 `json:"id"`
	State         State                  `json:"state"`
	Ingredients   []recipe.Ingredient    `json:"ingredients"`
	Cuisines      []recipe.CuisineGroup  `json:"cuisines,omitempty"`
	Selected      *recipe.Recipe         `json:"selectedRecipe,omitempty"`
	Substitutions []recipe.Substitution  `json:"substitutions,omitempty"`
	PerfectMatch  bool                   `json:"perfectMatch"`
	ChatLog       []recipe.ChatMessage   `json:"chatLog,omitempty"`
	PendingPatch  *recipe.Patch          `json:"pendingPatch,omitempty"`
	Loading       map[Operation]bool     `json:"loading,omitempty"`
}

// Snapshot 取得目前會話狀態
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:            s.ID,
		State:         s.state,
		Ingredients:   s.ingredients.Snapshot(),
		Cuisines:      s.catalog.Groups(),
		Substitutions: append([]recipe.Substitution(nil), s.subs...),
		PerfectMatch:  s.perfect,
		ChatLog:       append([]recipe.ChatMessage(nil), s.chatLog...),
	}
	if s.selected != nil {
		r := s.selected.Clone()
		snap.Selected = &r
	}
	if s.pending != nil {
		p := *s.pending
		snap.PendingPatch = &p
	}
	loading := make(map[Operation]bool)
	for op, in := range s.inflight {
		if in {
			loading[op] = true
		}
	}
	if len(loading) > 0 {
		snap.Loading = loading
	}
	return snap
}

// touch 更新活動時間，呼叫端需持有鎖
func (s *Session) touch() {
	s.lastActive = time.Now()
}

// IdleSince 距離上次活動的時間
func (s *Session) IdleSince() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.lastActive)
}

// begin 開始一項 AI 操作：檢查單飛守衛並遞增序號，呼叫端需持有鎖
func (s *Session) begin(op Operation) (uint64, error) {
	if s.inflight[op] {
		return 0, common.ErrOperationInFlight.WithCause(fmt.Errorf("%s operation already in flight", op))
	}
	s.inflight[op] = true
	s.seq[op]++
	return s.seq[op], nil
}

// finish 結束一項 AI 操作，回報結果是否仍為最新；呼叫端需持有鎖
// 序號不符代表請求已被取消或重置取代，結果須丟棄
func (s *Session) finish(op Operation, seq uint64) bool {
	if s.seq[op] != seq {
		common.LogDebug("丟棄過期的操作回應",
			zap.String("session_id", s.ID),
			zap.String("operation", string(op)),
			zap.Uint64("response_seq", seq),
			zap.Uint64("current_seq", s.seq[op]),
		)
		return false
	}
	s.inflight[op] = false
	return true
}

// requireState 檢查目前狀態，呼叫端需持有鎖
func (s *Session) requireState(states ...State) error {
	for _, st := range states {
		if s.state == st {
			return nil
		}
	}
	return common.ErrInvalidInput.WithCause(fmt.Errorf("operation not allowed in state %s", s.state))
}

// AnalyzeImage 圖片食材辨識：Upload → Ingredients
// 成功即整批替換食材集合
func (s *Session) AnalyzeImage(ctx context.Context, imageData string) ([]recipe.Ingredient, error) {
	s.mu.Lock()
	s.touch()
	if err := s.requireState(StateUpload, StateIngredients); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	seq, err := s.begin(OpDetect)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	items, err := s.collab.Detector.DetectIngredients(ctx, imageData)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finish(OpDetect, seq) {
		return nil, common.ErrStaleResponse
	}
	if err != nil {
		// 維持原狀態，錯誤可由使用者重試
		return nil, err
	}

	s.ingredients.ReplaceAll(items)
	s.state = StateIngredients
	return s.ingredients.Snapshot(), nil
}

// LoadSample 載入內建樣本食材：Upload → Ingredients，無 AI 呼叫
func (s *Session) LoadSample() ([]recipe.Ingredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.requireState(StateUpload, StateIngredients); err != nil {
		return nil, err
	}
	s.ingredients.ReplaceAll(recipe.SampleIngredients())
	s.state = StateIngredients
	return s.ingredients.Snapshot(), nil
}

// AddIngredient 手動新增食材，於 Upload 狀態首次新增即轉移到 Ingredients
func (s *Session) AddIngredient(ing recipe.Ingredient) ([]recipe.Ingredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.requireState(StateUpload, StateIngredients); err != nil {
		return nil, err
	}
	if err := s.ingredients.Add(ing); err != nil {
		return nil, err
	}
	s.state = StateIngredients
	return s.ingredients.Snapshot(), nil
}

// RemoveIngredient 依位置移除食材，越界回報錯誤
func (s *Session) RemoveIngredient(index int) ([]recipe.Ingredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.requireState(StateIngredients); err != nil {
		return nil, err
	}
	if err := s.ingredients.Remove(index); err != nil {
		return nil, err
	}
	return s.ingredients.Snapshot(), nil
}

// FindRecipes 食譜生成：Ingredients → Recipes
// 以當下食材快照呼叫生成方；失敗不安裝任何部分目錄，停留在 Ingredients
func (s *Session) FindRecipes(ctx context.Context) ([]recipe.CuisineGroup, error) {
	s.mu.Lock()
	s.touch()
	if err := s.requireState(StateIngredients); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.ingredients.Len() == 0 {
		s.mu.Unlock()
		return nil, common.ErrInvalidInput.WithCause(fmt.Errorf("no ingredients to generate recipes from"))
	}
	seq, err := s.begin(OpGenerate)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	snapshot := s.ingredients.Snapshot()
	s.mu.Unlock()

	groups, err := s.collab.Generator.GenerateCuisines(ctx, snapshot)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finish(OpGenerate, seq) {
		return nil, common.ErrStaleResponse
	}
	if err != nil {
		return nil, err
	}

	s.catalog.Replace(groups)
	s.subs = nil
	s.perfect = false
	s.state = StateRecipes
	return s.catalog.Groups(), nil
}

// SelectRecipe 選取食譜卡片：Recipes → CookingInstructions
// 選取即設定所選食譜（目錄中的精確值），並重置對話與替換狀態
func (s *Session) SelectRecipe(recipeID string) (*recipe.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.requireState(StateRecipes); err != nil {
		return nil, err
	}
	r, ok := s.catalog.FindRecipe(recipeID)
	if !ok {
		return nil, common.ErrNotFound.WithCause(fmt.Errorf("recipe %s not found in catalog", recipeID))
	}

	s.selected = &r
	s.subs = nil
	s.perfect = false
	s.chatLog = nil
	s.pending = nil
	s.state = StateCookingInstructions

	out := r.Clone()
	return &out, nil
}

// SubstitutionResult 替換流程結果
type SubstitutionResult struct {
	Substitutions []recipe.Substitution `json:"substitutions"`
	PerfectMatch  bool                  `json:"perfectMatch"`
}

// RequestSubstitutions 替換建議：CookingInstructions → Substitutions
// 缺少食材集合為空時短路：不呼叫替換協作方，直接回報完美匹配
func (s *Session) RequestSubstitutions(ctx context.Context) (*SubstitutionResult, error) {
	s.mu.Lock()
	s.touch()
	if err := s.requireState(StateCookingInstructions); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.selected == nil {
		s.mu.Unlock()
		return nil, common.ErrInvalidInput.WithCause(fmt.Errorf("no recipe selected"))
	}

	selected := s.selected.Clone()
	missing := selected.MissingIngredients()
	if len(missing) == 0 {
		// 完美匹配：立即呈現空結果，不發出 AI 呼叫
		s.subs = []recipe.Substitution{}
		s.perfect = true
		s.state = StateSubstitutions
		s.mu.Unlock()
		common.LogInfo("完美匹配，跳過替換建議呼叫",
			zap.String("session_id", s.ID),
			zap.String("recipe", selected.Title),
		)
		return &SubstitutionResult{Substitutions: []recipe.Substitution{}, PerfectMatch: true}, nil
	}

	seq, err := s.begin(OpSubstitute)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	available := s.ingredients.Snapshot()
	s.mu.Unlock()

	subs, err := s.collab.Substituter.GenerateSubstitutions(ctx, selected, available)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finish(OpSubstitute, seq) {
		return nil, common.ErrStaleResponse
	}
	if err != nil {
		// 停留在 CookingInstructions，可重試
		return nil, err
	}

	s.subs = subs
	s.perfect = false
	s.state = StateSubstitutions
	return &SubstitutionResult{Substitutions: subs, PerfectMatch: false}, nil
}

// Back 純返回導航，僅移動畫面指標
func (s *Session) Back() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	switch s.state {
	case StateSubstitutions:
		s.state = StateCookingInstructions
	case StateCookingInstructions:
		s.state = StateRecipes
	case StateRecipes:
		s.state = StateIngredients
	case StateIngredients:
		s.state = StateUpload
	case StateSavedRecipes:
		s.state = s.prevState
	default:
		return s.state, common.ErrInvalidInput.WithCause(fmt.Errorf("cannot navigate back from state %s", s.state))
	}
	return s.state, nil
}

// OpenSavedRecipes 進入已儲存食譜分支，記住返回點
func (s *Session) OpenSavedRecipes() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.state != StateSavedRecipes {
		s.prevState = s.state
		s.state = StateSavedRecipes
	}
	return s.state
}

// Cancel 取消進行中的操作：遞增序號讓晚到的回應被丟棄，回到前一穩定狀態
// 載入期間狀態指標並未離開穩定狀態，因此只需清守衛
func (s *Session) Cancel(op Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if !s.inflight[op] {
		return common.ErrInvalidInput.WithCause(fmt.Errorf("no %s operation in flight", op))
	}
	s.seq[op]++
	s.inflight[op] = false
	common.LogInfo("已取消進行中的操作",
		zap.String("session_id", s.ID),
		zap.String("operation", string(op)),
	)
	return nil
}

// Reset 從任何狀態回到 Upload，清空全部流程狀態
// 同時讓所有在途回應過期；已儲存食譜不受影響
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	for _, op := range []Operation{OpDetect, OpGenerate, OpSubstitute, OpChat} {
		s.seq[op]++
		s.inflight[op] = false
	}
	s.ingredients.Clear()
	s.catalog.Clear()
	s.selected = nil
	s.subs = nil
	s.perfect = false
	s.chatLog = nil
	s.pending = nil
	s.state = StateUpload
}
