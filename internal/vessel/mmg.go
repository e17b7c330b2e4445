package vessel

import (
	"math"

	"github.com/san-kum/tankersim/internal/dynamo"
)

// State vector layout used with dynamo integrators.
const (
	IdxNorth = iota
	IdxEast
	IdxPsi
	IdxU
	IdxV
	IdxR

	stateDim = 6
)

// Control vector layout for [MMG.Derive].
const (
	CtrlRudder = iota
	CtrlNps
	CtrlCurrentSpeed
	CtrlCurrentAngle

	controlDim = 4
)

// Forcing is the environment acting on the hull during one interval.
type Forcing struct {
	CurrentSpeed float64 // [m/s]
	CurrentAngle float64 // [rad]

	// Reserved: carried but not part of the force model.
	WindSpeed float64
	WindAngle float64
	Depth     float64
}

// MMG evaluates the equations of motion. It holds no mutable state and is
// safe for concurrent use.
type MMG struct {
	p Params

	mx, my, jz float64 // added masses and added moment of inertia
	xH         float64 // dimensional acting point of the additional lateral force
	areaFront  float64 // frontal area for current loads
	areaLat    float64 // lateral area for current loads
	inertia    float64 // I_zG + J_z + x_G^2 m
}

func NewMMG(p Params) *MMG {
	half := 0.5 * p.Rho * p.Lpp * p.Lpp * p.D
	return &MMG{
		p:         p,
		mx:        p.MxDash * half,
		my:        p.MyDash * half,
		jz:        p.JzDash * 0.5 * p.Rho * math.Pow(p.Lpp, 4) * p.D,
		xH:        p.XHDash * p.Lpp,
		areaFront: p.B * p.D * p.Cb,
		areaLat:   p.Lpp * p.D * p.Cb,
		inertia:   p.IzG + p.JzDash*0.5*p.Rho*math.Pow(p.Lpp, 4)*p.D + p.XG*p.XG*p.Mass,
	}
}

func (m *MMG) Params() Params { return m.p }

func (m *MMG) StateDim() int   { return stateDim }
func (m *MMG) ControlDim() int { return controlDim }

// ControlVector packs the inputs of one interval for [MMG.Derive].
func ControlVector(rudder, nps float64, f Forcing) dynamo.Control {
	return dynamo.Control{rudder, nps, f.CurrentSpeed, f.CurrentAngle}
}

func (m *MMG) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	var rudder, nps float64
	var f Forcing
	if len(u) > CtrlNps {
		rudder, nps = u[CtrlRudder], u[CtrlNps]
	}
	if len(u) > CtrlCurrentAngle {
		f.CurrentSpeed, f.CurrentAngle = u[CtrlCurrentSpeed], u[CtrlCurrentAngle]
	}
	return m.Derivative(x, rudder, nps, f)
}

// Derivative returns [Ṅ, Ė, ψ̇, u̇, v̇, ṙ] for state x = [N, E, ψ, u, v, r].
func (m *MMG) Derivative(x dynamo.State, rudder, nps float64, f Forcing) dynamo.State {
	p := &m.p
	psi, u, v, r := x[IdxPsi], x[IdxU], x[IdxV], x[IdxR]

	vm := v - p.XG*r
	U := math.Sqrt(u*u + vm*vm)

	// at rest the drift angle and the non-dimensional velocities are
	// undefined and taken as zero
	var beta, vDash, rDash float64
	if U != 0 {
		beta = math.Atan2(-vm, u)
		vDash = vm / U
		rDash = r * p.Lpp / U
	}

	fx := m.propellerAndRudder(u, U, beta, rDash, rudder, nps)

	// hull
	q := 0.5 * p.Rho * p.Lpp * p.D * U * U
	vv := vDash * vDash
	rr := rDash * rDash
	xH := q * (-p.R0Dash + p.XvvDash*vv + p.XvrDash*vDash*rDash + p.XrrDash*rr + p.XvvvvDash*vv*vv)
	yH := q * (p.YvDash*vDash + p.YrDash*rDash + p.YvvvDash*vv*vDash +
		p.YvvrDash*vv*rDash + p.YvrrDash*vDash*rr + p.YrrrDash*rr*rDash)
	nH := q * p.Lpp * (p.NvDash*vDash + p.NrDash*rDash + p.NvvvDash*vv*vDash +
		p.NvvrDash*vv*rDash + p.NvrrDash*vDash*rr + p.NrrrDash*rr*rDash)

	// rudder
	cosD, sinD := math.Cos(rudder), math.Sin(rudder)
	xR := -(1 - p.TR) * fx.normal * sinD
	yR := -(1 + p.AH) * fx.normal * cosD
	nR := -(p.XR + p.AH*m.xH) * fx.normal * cosD

	xC, yC, nC := m.currentLoads(psi, u, vm, f)

	X := xH + xR + fx.thrust + xC
	Y := yH + yR + yC
	N := nH + nR + nC

	mass := p.Mass
	du := (X + (mass+m.my)*v*r + p.XG*mass*r*r) / (mass + m.mx)
	dv := (Y - (mass+m.mx)*u*r - p.XG*mass*N/m.inertia + p.XG*p.XG*mass*mass*u*r/m.inertia) /
		((mass + m.my) - p.XG*p.XG*mass*mass/m.inertia)
	dr := (N - (p.XG*mass*dv + p.XG*mass*u*r)) / m.inertia

	sinPsi, cosPsi := math.Sin(psi), math.Cos(psi)
	return dynamo.State{
		u*cosPsi - v*sinPsi,
		u*sinPsi + v*cosPsi,
		r,
		du,
		dv,
		dr,
	}
}

// wakeFraction is the effective wake at the propeller for the inflow angle
// betaP. The exponential multiplies (C2 - 1) only, so straight motion gives
// 1 - (1 + (2 - C2)(1 - w_P0)) rather than w_P0.
func (p *Params) wakeFraction(betaP float64) float64 {
	c2 := p.C2Minus
	if betaP >= 0 {
		c2 = p.C2Plus
	}
	return 1 - (1+(1-math.Exp(-p.C1*math.Abs(betaP))*(c2-1))*(1-p.WP0))
}

type actuatorForces struct {
	thrust float64 // X_P
	normal float64 // rudder normal force F_N
}

func (m *MMG) propellerAndRudder(u, U, beta, rDash, rudder, nps float64) actuatorForces {
	p := &m.p

	betaP := beta - (p.XP/p.Lpp)*rDash
	wP := p.wakeFraction(betaP)

	// without propeller revolutions there is no advance ratio
	var J float64
	if nps != 0 {
		J = (1 - wP) * u / (nps * p.Dp)
	}
	kT := p.K0 + p.K1*J + p.K2*J*J
	dp4 := math.Pow(p.Dp, 4)
	thrust := (1 - p.TP) * p.Rho * kT * nps * nps * dp4

	betaR := beta - p.LR*rDash
	gammaR := p.GammaRPlus
	if betaR < 0 {
		gammaR = p.GammaRMinus
	}
	vR := U * gammaR * betaR

	// J = 0 leaves the slipstream term undefined, use the bollard pull
	// expression derived from thrust instead
	var uR float64
	if J == 0 {
		s := p.Kappa * p.Epsilon * 8.0 * p.K0 * nps * nps * dp4 / math.Pi
		uR = math.Sqrt(p.Eta * s * s)
	} else {
		slip := 1.0 + p.Kappa*(math.Sqrt(1.0+8.0*kT/(math.Pi*J*J))-1)
		uR = u * (1 - wP) * p.Epsilon * math.Sqrt(p.Eta*slip*slip+(1-p.Eta))
	}

	UR := math.Sqrt(uR*uR + vR*vR)
	alphaR := rudder - math.Atan2(vR, uR)
	normal := 0.5 * p.AR * p.Rho * p.FAlpha * UR * UR * math.Sin(alphaR)

	return actuatorForces{thrust: thrust, normal: normal}
}

// currentLoads returns the surge, sway and yaw loads of the relative current
// flow. The coefficients are empirical polynomials of the absolute relative
// inflow angle.
func (m *MMG) currentLoads(psi, u, vm float64, f Forcing) (float64, float64, float64) {
	if f.CurrentSpeed == 0 {
		return 0, 0, 0
	}
	p := &m.p

	uc := -f.CurrentSpeed * math.Cos(f.CurrentAngle-psi)
	urc := u - uc
	vc := f.CurrentSpeed * math.Sin(f.CurrentAngle-psi)
	vrc := vm - vc

	g := math.Abs(-math.Atan2(vrc, urc))

	xC := 0.5 * p.Rho * m.areaFront * currentCX(g) * math.Abs(urc) * urc
	yC := 0.5 * p.Rho * m.areaLat * currentCY(g) * math.Abs(vrc) * vrc
	nC := 0.5 * p.Rho * m.areaLat * p.Lpp * currentCN(g) * math.Abs(vrc) * vrc
	return xC, yC, nC
}

func currentCX(g float64) float64 {
	return horner(g, -0.4691, -0.2967, 1.6024, -1.4365, 0.5228, -0.0665)
}

func currentCY(g float64) float64 {
	return horner(g, -0.00273578, 0.39114522, 0.46812233, -0.37522028, 0.05930686)
}

func currentCN(g float64) float64 {
	return horner(g, 0, 0.0728, 0.1617, -0.2757, 0.1131, -0.0140)
}

// horner evaluates c[0] + c[1]x + c[2]x^2 + ...
func horner(x float64, c ...float64) float64 {
	acc := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		acc = acc*x + c[i]
	}
	return acc
}
