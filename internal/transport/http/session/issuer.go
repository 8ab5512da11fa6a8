package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"estate-api/internal/core/auth"
	"estate-api/internal/domain"
)

const (
	CookieName = "token"
	CookieTTL  = 7 * 24 * time.Hour
)

// View is the user as rendered in a session reply: no password, no createdAt.
type View struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Phone    *string         `json:"phone"`
	Location string          `json:"location"`
	UserType domain.UserType `json:"userType"`
	Avatar   *string         `json:"avatar,omitempty"`
}

func NewView(u *domain.User) View {
	return View{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Phone:    u.Phone,
		Location: u.Location,
		UserType: u.UserType,
		Avatar:   u.Avatar,
	}
}

type Reply struct {
	Success bool   `json:"success"`
	User    View   `json:"user"`
	Token   string `json:"token"`
}

// Session is what Issue hands back after the reply has been written.
type Session struct {
	Token  string
	Cookie *http.Cookie
}

type Issuer struct {
	JWT    *auth.JWTer
	Secure bool
	Now    func() time.Time
}

func NewIssuer(j *auth.JWTer, secure bool) *Issuer {
	return &Issuer{JWT: j, Secure: secure, Now: time.Now}
}

func (i *Issuer) cookie(token string, now time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(CookieTTL),
		MaxAge:   int(CookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   i.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// Issue signs a token for u, sets the session cookie and writes the 200
// reply. It clears u.Password and u.CreatedAt. On error nothing is written.
func (i *Issuer) Issue(c *gin.Context, u *domain.User) (*Session, error) {
	now := i.Now()
	token, err := i.JWT.IssueAt(now, u.ID, u.Email, string(u.UserType))
	if err != nil {
		return nil, domain.Internal("sign session token", err)
	}
	u.Password = nil
	u.CreatedAt = time.Time{}

	ck := i.cookie(token, now)
	http.SetCookie(c.Writer, ck)
	c.JSON(http.StatusOK, Reply{Success: true, User: NewView(u), Token: token})
	return &Session{Token: token, Cookie: ck}, nil
}

// Token extracts the session token from the cookie or a bearer header.
func Token(c *gin.Context) string {
	if v, err := c.Cookie(CookieName); err == nil && v != "" {
		return v
	}
	const prefix = "Bearer "
	if ah := c.GetHeader("Authorization"); len(ah) > len(prefix) && ah[:len(prefix)] == prefix {
		return ah[len(prefix):]
	}
	return ""
}
