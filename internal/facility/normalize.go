// Package facility fetches childcare and kindergarten details from the
// government open-data APIs and normalizes their loosely-typed payloads.
package facility

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DetailSummary is the normalized facility detail served to clients
type DetailSummary struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Homepage    string `json:"homepage"`
	Fax         string `json:"fax,omitempty"`
	Capacity    int    `json:"capacity"`
	Enrolled    int    `json:"enrolled"`
	TeacherCnt  int    `json:"teacherCount"`
	ClassCount  int    `json:"classCount"`
	CCTVCount   int    `json:"cctvCount"`
	Established string `json:"establishedDate"`
	DataDate    string `json:"dataStandardDate,omitempty"`
	Services    string `json:"services"`
	Director    string `json:"director"`

	Region struct {
		SidoName string `json:"sidoName"`
		SggName  string `json:"sggName"`
		Zipcode  string `json:"zipcode"`
	} `json:"region"`

	Facility struct {
		RoomCount       int     `json:"roomCount"`
		RoomSize        float64 `json:"roomSize"`
		PlaygroundCount int     `json:"playgroundCount"`
		CCTVCount       int     `json:"cctvCount"`
	} `json:"facility"`

	Staff struct {
		Director       int `json:"director"`
		Teacher        int `json:"teacher"`
		SpecialTeacher int `json:"specialTeacher"`
		Therapist      int `json:"therapist"`
		Nutritionist   int `json:"nutritionist"`
		Nurse          int `json:"nurse"`
		NurseAssistant int `json:"nurseAssistant"`
		Cook           int `json:"cook"`
		Clerk          int `json:"clerk"`
		Total          int `json:"total"`
	} `json:"staff"`

	Classes  AgeBreakdown `json:"classes"`
	Children AgeBreakdown `json:"children"`

	WaitingList struct {
		Age0  int `json:"age0"`
		Age1  int `json:"age1"`
		Age2  int `json:"age2"`
		Age3  int `json:"age3"`
		Age4  int `json:"age4"`
		Age5  int `json:"age5"`
		Over6 int `json:"over6"`
		Total int `json:"total"`
	} `json:"waitingList"`

	Transportation struct {
		Available bool   `json:"available"`
		Status    string `json:"status"`
	} `json:"transportation"`

	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
}

// AgeBreakdown holds per-age counts for classes or enrolled children
type AgeBreakdown struct {
	Age0      int `json:"age0"`
	Age1      int `json:"age1"`
	Age2      int `json:"age2"`
	Age3      int `json:"age3"`
	Age4      int `json:"age4"`
	Age5      int `json:"age5"`
	Mixed0To2 int `json:"mixed0To2"`
	Mixed3To5 int `json:"mixed3To5"`
	Special   int `json:"special"`
	Total     int `json:"total"`
}

func (a AgeBreakdown) sum() int {
	return a.Age0 + a.Age1 + a.Age2 + a.Age3 + a.Age4 + a.Age5 +
		a.Mixed0To2 + a.Mixed3To5 + a.Special
}

// rawRecord wraps an upstream item with lowercase key access.
// The upstream APIs return the same fields in mixed casing depending on the
// endpoint (CLASS_CNT_00 vs class_cnt_00), so all lookups fold case first.
type rawRecord map[string]interface{}

func newRawRecord(item map[string]interface{}) rawRecord {
	r := make(rawRecord, len(item))
	for k, v := range item {
		r[strings.ToLower(k)] = v
	}
	return r
}

// get returns the first present value among key and the given alternates
func (r rawRecord) get(key string, alts ...string) interface{} {
	if v, ok := r[strings.ToLower(key)]; ok {
		return v
	}
	for _, alt := range alts {
		if v, ok := r[strings.ToLower(alt)]; ok {
			return v
		}
	}
	return nil
}

// toNum converts an upstream value to a number. Empty strings, the literal
// "null" and thousands separators all appear in real payloads; every
// unparseable value collapses to zero.
func toNum(v interface{}) float64 {
	if v == nil {
		return 0
	}
	s := strings.TrimSpace(fmt.Sprintf("%v", v))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || strings.EqualFold(s, "null") {
		return 0
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return n
}

func toInt(v interface{}) int {
	return int(toNum(v))
}

// toStr converts an upstream value to a trimmed string, with a fallback for
// nil or blank values
func toStr(v interface{}, fallback string) string {
	if v == nil {
		return fallback
	}
	s := strings.TrimSpace(fmt.Sprintf("%v", v))
	if s == "" {
		return fallback
	}
	return s
}

var schemeTypoRe = regexp.MustCompile(`(?i)^(https?);//`)
var schemeRe = regexp.MustCompile(`(?i)^https?://`)

// NormalizeURL repairs the common semicolon typo (http;// -> http://) and
// prefixes a scheme when missing. Empty input stays empty.
func NormalizeURL(url string) string {
	u := strings.TrimSpace(url)
	if u == "" {
		return ""
	}
	u = schemeTypoRe.ReplaceAllString(u, "$1://")
	if !schemeRe.MatchString(u) {
		u = "https://" + strings.TrimLeft(u, "/")
	}
	return u
}

// Normalize converts a raw upstream item into a DetailSummary.
// Reported totals win when present; otherwise totals are derived by summing
// the per-age fields.
func Normalize(item map[string]interface{}, code string) *DetailSummary {
	r := newRawRecord(item)

	s := &DetailSummary{
		Code:        toStr(r.get("stcode"), code),
		Name:        toStr(r.get("crname"), fmt.Sprintf("어린이집 (%s)", code)),
		Type:        toStr(r.get("crtypename"), "민간"),
		Status:      toStr(r.get("crstatusname"), "정상"),
		Address:     toStr(r.get("craddr"), "정보 없음"),
		Phone:       toStr(r.get("crtelno"), "정보 없음"),
		Homepage:    NormalizeURL(toStr(r.get("crhome"), "")),
		Fax:         toStr(r.get("crfaxno"), ""),
		Capacity:    toInt(r.get("crcapat")),
		Enrolled:    toInt(r.get("crchcnt")),
		TeacherCnt:  toInt(r.get("chcrtescnt")),
		CCTVCount:   toInt(r.get("cctvinstlcnt")),
		Established: toStr(r.get("crcnfmdt"), ""),
		DataDate:    toStr(r.get("datastdrdt"), ""),
		Services:    toStr(r.get("crspec"), "일반보육"),
		Director:    toStr(r.get("crrepname"), "정보 없음"),
	}

	s.Region.SidoName = toStr(r.get("sidoname"), "")
	s.Region.SggName = toStr(r.get("sigunguname", "sigunname"), "")
	s.Region.Zipcode = toStr(r.get("zipcode"), "")

	s.Facility.RoomCount = toInt(r.get("nrtrroomcnt"))
	s.Facility.RoomSize = toNum(r.get("nrtrroomsize"))
	s.Facility.PlaygroundCount = toInt(r.get("plgrdco"))
	s.Facility.CCTVCount = toInt(r.get("cctvinstlcnt"))

	s.Classes = AgeBreakdown{
		Age0:      toInt(r.get("class_cnt_00")),
		Age1:      toInt(r.get("class_cnt_01")),
		Age2:      toInt(r.get("class_cnt_02")),
		Age3:      toInt(r.get("class_cnt_03")),
		Age4:      toInt(r.get("class_cnt_04")),
		Age5:      toInt(r.get("class_cnt_05")),
		Mixed0To2: toInt(r.get("class_cnt_m2")),
		Mixed3To5: toInt(r.get("class_cnt_m5")),
		Special:   toInt(r.get("class_cnt_sp")),
	}
	if total := toInt(r.get("class_cnt_tot")); total > 0 {
		s.Classes.Total = total
	} else {
		s.Classes.Total = s.Classes.sum()
	}
	s.ClassCount = s.Classes.Total

	s.Children = AgeBreakdown{
		Age0:      toInt(r.get("child_cnt_00")),
		Age1:      toInt(r.get("child_cnt_01")),
		Age2:      toInt(r.get("child_cnt_02")),
		Age3:      toInt(r.get("child_cnt_03")),
		Age4:      toInt(r.get("child_cnt_04")),
		Age5:      toInt(r.get("child_cnt_05")),
		Mixed0To2: toInt(r.get("child_cnt_m2")),
		Mixed3To5: toInt(r.get("child_cnt_m5")),
		Special:   toInt(r.get("child_cnt_sp")),
	}
	if total := toInt(r.get("child_cnt_tot")); total > 0 {
		s.Children.Total = total
	} else {
		s.Children.Total = s.Children.sum()
	}

	s.WaitingList.Age0 = toInt(r.get("ew_cnt_00"))
	s.WaitingList.Age1 = toInt(r.get("ew_cnt_01"))
	s.WaitingList.Age2 = toInt(r.get("ew_cnt_02"))
	s.WaitingList.Age3 = toInt(r.get("ew_cnt_03"))
	s.WaitingList.Age4 = toInt(r.get("ew_cnt_04"))
	s.WaitingList.Age5 = toInt(r.get("ew_cnt_05"))
	s.WaitingList.Over6 = toInt(r.get("ew_cnt_m6"))
	if total := toInt(r.get("ew_cnt_tot")); total > 0 {
		s.WaitingList.Total = total
	} else {
		s.WaitingList.Total = s.WaitingList.Age0 + s.WaitingList.Age1 + s.WaitingList.Age2 +
			s.WaitingList.Age3 + s.WaitingList.Age4 + s.WaitingList.Age5 + s.WaitingList.Over6
	}

	s.Staff.Director = toInt(r.get("em_cnt_a1"))
	s.Staff.Teacher = toInt(r.get("em_cnt_a2"))
	s.Staff.SpecialTeacher = toInt(r.get("em_cnt_a3"))
	s.Staff.Therapist = toInt(r.get("em_cnt_a4"))
	s.Staff.Nutritionist = toInt(r.get("em_cnt_a5"))
	s.Staff.Nurse = toInt(r.get("em_cnt_a6"))
	s.Staff.NurseAssistant = toInt(r.get("em_cnt_a10"))
	s.Staff.Cook = toInt(r.get("em_cnt_a7"))
	s.Staff.Clerk = toInt(r.get("em_cnt_a8"))
	staffSum := s.Staff.Director + s.Staff.Teacher + s.Staff.SpecialTeacher +
		s.Staff.Therapist + s.Staff.Nutritionist + s.Staff.Nurse +
		s.Staff.NurseAssistant + s.Staff.Cook + s.Staff.Clerk
	switch {
	case toInt(r.get("em_cnt_tot")) > 0:
		s.Staff.Total = toInt(r.get("em_cnt_tot"))
	case staffSum > 0:
		s.Staff.Total = staffSum
	default:
		s.Staff.Total = s.TeacherCnt
	}

	carStatus := toStr(r.get("crcargbname"), "정보 없음")
	s.Transportation.Available = carStatus == "운영"
	s.Transportation.Status = carStatus

	s.Location.Lat = toNum(r.get("la"))
	s.Location.Lng = toNum(r.get("lo"))

	return s
}

// Placeholder returns a representative summary for a facility whose detail
// could not be fetched. Served only on non-silent lookups so the UI always
// has something to render.
func Placeholder(code string) *DetailSummary {
	s := &DetailSummary{
		Code:        code,
		Name:        fmt.Sprintf("샘플 어린이집 (%s)", code),
		Type:        "민간",
		Status:      "정상",
		Address:     "정보를 불러올 수 없습니다",
		Phone:       "정보 없음",
		Capacity:    50,
		Enrolled:    45,
		TeacherCnt:  8,
		ClassCount:  6,
		CCTVCount:   12,
		Established: "20100301",
		Services:    "일반보육, 연장보육",
		Director:    "정보 없음",
	}

	s.Facility.RoomCount = 6
	s.Facility.RoomSize = 180
	s.Facility.PlaygroundCount = 1
	s.Facility.CCTVCount = 12

	s.Staff.Director = 1
	s.Staff.Teacher = 6
	s.Staff.Nutritionist = 1
	s.Staff.Cook = 1
	s.Staff.Total = 9

	s.Classes = AgeBreakdown{Age0: 1, Age1: 1, Age2: 1, Age3: 1, Age4: 1, Age5: 1, Total: 6}
	s.Children = AgeBreakdown{Age0: 8, Age1: 8, Age2: 8, Age3: 8, Age4: 7, Age5: 6, Total: 45}

	s.WaitingList.Age0 = 3
	s.WaitingList.Age1 = 5
	s.WaitingList.Age2 = 4
	s.WaitingList.Age3 = 2
	s.WaitingList.Age4 = 1
	s.WaitingList.Total = 15

	s.Transportation.Available = true
	s.Transportation.Status = "운영"

	s.Location.Lat = 37.5665
	s.Location.Lng = 126.9780

	return s
}
