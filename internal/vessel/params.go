package vessel

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidParams = errors.New("vessel: invalid parameters")

// Params are the physical constants of the hull, propeller and rudder. Primed
// (Dash) quantities are non-dimensional.
type Params struct {
	Cb   float64 `yaml:"c_b"`  // block coefficient
	Lpp  float64 `yaml:"lpp"`  // length between perpendiculars [m]
	B    float64 `yaml:"b"`    // breadth [m]
	D    float64 `yaml:"d"`    // draft [m]
	Mass float64 `yaml:"mass"` // displacement mass [kg]
	XG   float64 `yaml:"x_g"`  // longitudinal center of gravity [m]
	IzG  float64 `yaml:"i_zg"` // yaw moment of inertia [kg m^2]
	Rho  float64 `yaml:"rho"`  // water density [kg/m^3]

	MxDash float64 `yaml:"m_x_dash"` // added mass, surge
	MyDash float64 `yaml:"m_y_dash"` // added mass, sway
	JzDash float64 `yaml:"j_z_dash"` // added moment of inertia

	R0Dash    float64 `yaml:"r_0_dash"`
	XvvDash   float64 `yaml:"x_vv_dash"`
	XvrDash   float64 `yaml:"x_vr_dash"`
	XrrDash   float64 `yaml:"x_rr_dash"`
	XvvvvDash float64 `yaml:"x_vvvv_dash"`
	YvDash    float64 `yaml:"y_v_dash"`
	YrDash    float64 `yaml:"y_r_dash"`
	YvvvDash  float64 `yaml:"y_vvv_dash"`
	YvvrDash  float64 `yaml:"y_vvr_dash"`
	YvrrDash  float64 `yaml:"y_vrr_dash"`
	YrrrDash  float64 `yaml:"y_rrr_dash"`
	NvDash    float64 `yaml:"n_v_dash"`
	NrDash    float64 `yaml:"n_r_dash"`
	NvvvDash  float64 `yaml:"n_vvv_dash"`
	NvvrDash  float64 `yaml:"n_vvr_dash"`
	NvrrDash  float64 `yaml:"n_vrr_dash"`
	NrrrDash  float64 `yaml:"n_rrr_dash"`

	// propeller
	Dp      float64 `yaml:"d_p"`       // diameter [m]
	XP      float64 `yaml:"x_p"`       // longitudinal position [m]
	WP0     float64 `yaml:"w_p0"`      // wake fraction in straight motion
	TP      float64 `yaml:"t_p"`       // thrust deduction factor
	K0      float64 `yaml:"k_0"`       // open water K_T, intercept
	K1      float64 `yaml:"k_1"`       // open water K_T, linear term
	K2      float64 `yaml:"k_2"`       // open water K_T, quadratic term
	C1      float64 `yaml:"c_1"`       // wake change in maneuvering
	C2Plus  float64 `yaml:"c_2_plus"`  // wake change, positive drift at propeller
	C2Minus float64 `yaml:"c_2_minus"` // wake change, negative drift at propeller

	// rudder
	AR          float64 `yaml:"a_r"`           // movable rudder area [m^2]
	FAlpha      float64 `yaml:"f_alpha"`       // rudder lift gradient coefficient
	TR          float64 `yaml:"t_r"`           // steering resistance deduction
	AH          float64 `yaml:"a_h"`           // rudder force increase factor
	XHDash      float64 `yaml:"x_h_dash"`      // acting point of the additional lateral force
	XR          float64 `yaml:"x_r"`           // lever of the rudder force in the yaw moment
	LR          float64 `yaml:"l_r"`           // flow straightening correction for yaw rate
	GammaRPlus  float64 `yaml:"gamma_r_plus"`  // flow straightening, positive inflow angle
	GammaRMinus float64 `yaml:"gamma_r_minus"` // flow straightening, negative inflow angle
	Eta         float64 `yaml:"eta"`           // propeller diameter over rudder span
	Kappa       float64 `yaml:"kappa"`         // experimental constant for u_R
	Epsilon     float64 `yaml:"epsilon"`       // wake ratio rudder/propeller

	RudderMax  float64 `yaml:"rudder_max"`  // [rad]
	RudderRate float64 `yaml:"rudder_rate"` // [rad/s]
}

// DefaultKVLCC2 returns the full scale KVLCC2 constants.
func DefaultKVLCC2() Params {
	return Params{
		Cb:   0.810,
		Lpp:  320.0,
		B:    58.0,
		D:    20.8,
		Mass: 312_600 * 1000,
		XG:   11.2,
		IzG:  2e12,
		Rho:  1000,

		MxDash: 0.022,
		MyDash: 0.223,
		JzDash: 0.011,

		R0Dash:    0.022,
		XvvDash:   -0.040,
		XvrDash:   0.002,
		XrrDash:   0.011,
		XvvvvDash: 0.771,
		YvDash:    -0.315,
		YrDash:    0.083,
		YvvvDash:  -1.607,
		YvvrDash:  0.379,
		YvrrDash:  -0.391,
		YrrrDash:  0.008,
		NvDash:    -0.137,
		NrDash:    -0.049,
		NvvvDash:  -0.030,
		NvvrDash:  -0.294,
		NvrrDash:  0.055,
		NrrrDash:  -0.013,

		Dp:      9.86,
		XP:      -160.0,
		WP0:     0.35,
		TP:      0.220,
		K0:      0.2931,
		K1:      -0.2753,
		K2:      -0.1359,
		C1:      2.0,
		C2Plus:  1.6,
		C2Minus: 1.1,

		AR:          112.5,
		FAlpha:      2.747,
		TR:          0.387,
		AH:          0.312,
		XHDash:      -0.464,
		XR:          -0.5,
		LR:          -0.710,
		GammaRPlus:  0.640,
		GammaRMinus: 0.395,
		Eta:         0.626,
		Kappa:       0.50,
		Epsilon:     1.09,

		RudderMax:  10 * math.Pi / 180,
		RudderRate: 2.5 * math.Pi / 180,
	}
}

// Validate rejects parameter sets that make the model singular.
func (p Params) Validate() error {
	positive := map[string]float64{
		"lpp":         p.Lpp,
		"b":           p.B,
		"d":           p.D,
		"mass":        p.Mass,
		"i_zg":        p.IzG,
		"rho":         p.Rho,
		"d_p":         p.Dp,
		"rudder_max":  p.RudderMax,
		"rudder_rate": p.RudderRate,
	}
	for name, v := range positive {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidParams, name, v)
		}
	}
	if p.Eta < 0 || p.Eta > 1 {
		return fmt.Errorf("%w: eta must be in [0, 1], got %v", ErrInvalidParams, p.Eta)
	}
	return nil
}
